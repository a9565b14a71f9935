//go:build linux

package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// Linux input_event wire layout, 64-bit time_t variant: two int64
// halves of the timeval followed by type/code/value. Grounded on the
// kernel uapi struct captured in the retrieved mylib linux-input
// reference (Sec, Usec, Type, Code, Value fields, EV_KEY/EV_REL/EV_ABS
// event classes).
const inputEventSize = 24

const (
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	relX = 0x00
	relY = 0x01

	absX = 0x00
	absY = 0x01
)

// LinuxBackend reads raw input_event records off one or more
// /dev/input/eventN device nodes.
type LinuxBackend struct {
	Devices []string // explicit device paths; auto-discovered under /dev/input if empty
}

func (b *LinuxBackend) Name() string { return "linux-evdev" }

func (b *LinuxBackend) devices() ([]string, error) {
	if len(b.Devices) > 0 {
		return b.Devices, nil
	}
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrUnavailable
	}
	return matches, nil
}

func (b *LinuxBackend) Run(ctx context.Context, push Push, counter *HardwareEventCounter) error {
	paths, err := b.devices()
	if err != nil {
		return err
	}

	var fds []int
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			if err == unix.EACCES {
				continue
			}
			continue
		}
		fds = append(fds, fd)
	}
	if len(fds) == 0 {
		return ErrPermissionDenied
	}
	defer func() {
		for _, fd := range fds {
			unix.Close(fd)
		}
	}()

	pollFds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pollFds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	buf := make([]byte, inputEventSize*32)
	var x, y int32
	var mask uint8

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.Poll(pollFds, 250)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("sensor: poll: %w", err)
		}
		if n == 0 {
			continue
		}

		for _, pfd := range pollFds {
			if pfd.Revents&unix.POLLIN == 0 {
				continue
			}
			rn, err := unix.Read(int(pfd.Fd), buf)
			if err != nil || rn < inputEventSize {
				continue
			}
			count := rn / inputEventSize
			for e := 0; e < count; e++ {
				rec := buf[e*inputEventSize : (e+1)*inputEventSize]
				sec := int64(binary.LittleEndian.Uint64(rec[0:8]))
				usec := int64(binary.LittleEndian.Uint64(rec[8:16]))
				typ := binary.LittleEndian.Uint16(rec[16:18])
				code := binary.LittleEndian.Uint16(rec[18:20])
				value := int32(binary.LittleEndian.Uint32(rec[20:24]))

				switch typ {
				case evRel:
					if code == relX {
						x += value
					} else if code == relY {
						y += value
					}
				case evAbs:
					if code == absX {
						x = value
					} else if code == absY {
						y = value
					}
				case evKey:
					if value != 0 {
						mask |= 1
					} else {
						mask &^= 1
					}
				default:
					continue
				}

				t := time.Unix(sec, usec*1000).UnixNano()
				push(t, x, y, mask)
				counter.Add(1)
			}
		}
	}
}
