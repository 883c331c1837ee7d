//go:build !tinygo

package pms5003

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unsafe"

	"github.com/hjkoskel/listserialports"
	"golang.org/x/sys/unix"
)

// LinuxConn is the ByteSource for a Linux serial device. Reads go through a
// VTIME read timeout, an expired read surfaces as ErrWouldBlock.
type LinuxConn struct {
	f         *os.File
	serReader *bufio.Reader
}

var _ ByteSource = (*LinuxConn)(nil)

func (p *LinuxConn) Close() error {
	return p.f.Close()
}

// SendBytes writes raw bytes out, the simulator transmits frames with this.
func (p *LinuxConn) SendBytes(data []byte) error {
	n, err := p.f.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("wrote only %v bytes out of %v", n, len(data))
	}
	return nil
}

func (p *LinuxConn) ReadByte() (byte, error) {
	b, errRead := p.serReader.ReadByte()
	if errRead != nil {
		if errRead == io.EOF { //VTIME ran out, no byte arrived yet
			return 0, ErrWouldBlock
		}
		return 0, errRead
	}
	return b, nil
}

// Uses fixed settings for PMS5003: 9600 baud, 8 data bits, no parity, one stop bit
func CreateLinuxSerial(deviceportName string) (*LinuxConn, error) {

	//TESTED  socat -d -d pty,raw,echo=0 pty,raw,echo=0
	if !strings.HasPrefix(deviceportName, "/dev/pts") { //Avoid issues with testing with socat
		portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(deviceportName)
		if errPortDetect != nil {
			return nil, fmt.Errorf("serial port error %v", errPortDetect.Error())
		}
		if 0 < len(portUsedByPids) {
			return nil, fmt.Errorf("serial port %v is in use (by PID %#v)", deviceportName, portUsedByPids)
		}
	}

	f, errOpen := os.OpenFile(deviceportName, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if errOpen != nil {
		return nil, fmt.Errorf("serial device %v open error %v", deviceportName, errOpen.Error())
	}
	result := LinuxConn{
		f:         f,
		serReader: bufio.NewReader(f),
	}

	fd := result.f.Fd()

	t := unix.Termios{
		Iflag:  unix.IGNPAR,
		Cflag:  unix.CREAD | unix.CLOCAL | unix.B9600 | unix.CS8,
		Ispeed: unix.B9600,
		Ospeed: unix.B9600,
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 10 //Deciseconds, sensor pushes a frame roughly every second in active mode

	if _, _, errno := unix.Syscall6(
		unix.SYS_IOCTL,
		uintptr(fd),
		uintptr(unix.TCSETS),
		uintptr(unsafe.Pointer(&t)),
		0,
		0,
		0,
	); errno != 0 {
		return &result, fmt.Errorf("syscall6 fail %v", errno.Error())
	}

	errNonBlock := unix.SetNonblock(int(fd), false)
	if errNonBlock != nil {
		return &result, fmt.Errorf("setting nonblock %v", errNonBlock.Error())
	}
	return &result, nil
}
