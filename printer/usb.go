package printer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
	"go.uber.org/multierr"
)

type usbConn struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
	in   *gousb.InEndpoint
}

// ParseUSBID parses a "vendor:product" pair of hex IDs, e.g. "04b8:0202".
func ParseUSBID(s string) (gousb.ID, gousb.ID, error) {
	vid, pid, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("usb id %q: want vendor:product", s)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(vid, "0x"), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("usb vendor id %q: %w", vid, err)
	}
	p, err := strconv.ParseUint(strings.TrimPrefix(pid, "0x"), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("usb product id %q: %w", pid, err)
	}
	return gousb.ID(v), gousb.ID(p), nil
}

// NewUSBPrinter claims the first interface of the device and writes to its
// first bulk OUT endpoint.
func NewUSBPrinter(vendorID, productID gousb.ID) (*Printer, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to open usb device %s:%s: %w", vendorID, productID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb device %s:%s not found", vendorID, productID)
	}

	conn := &usbConn{ctx: ctx, dev: dev}
	if err := conn.claim(); err != nil {
		conn.Close()
		return nil, err
	}

	printer, err := NewPrinter(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return printer, nil
}

func (u *usbConn) claim() error {
	if err := u.dev.SetAutoDetach(true); err != nil {
		return fmt.Errorf("usb auto detach: %w", err)
	}

	var err error
	if u.cfg, err = u.dev.Config(1); err != nil {
		return fmt.Errorf("usb config: %w", err)
	}
	if u.intf, err = u.cfg.Interface(0, 0); err != nil {
		return fmt.Errorf("usb interface: %w", err)
	}

	for _, ep := range u.intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && u.out == nil:
			if u.out, err = u.intf.OutEndpoint(ep.Number); err != nil {
				return fmt.Errorf("usb out endpoint: %w", err)
			}
		case ep.Direction == gousb.EndpointDirectionIn && u.in == nil:
			// status reads are optional
			u.in, _ = u.intf.InEndpoint(ep.Number)
		}
	}
	if u.out == nil {
		return errors.New("usb device has no bulk out endpoint")
	}
	return nil
}

func (u *usbConn) Read(p []byte) (int, error) {
	if u.in != nil {
		return u.in.Read(p)
	}
	return 0, fmt.Errorf("USB read not supported")
}

func (u *usbConn) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

func (u *usbConn) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	var err error
	if u.cfg != nil {
		err = multierr.Append(err, u.cfg.Close())
	}
	if u.dev != nil {
		err = multierr.Append(err, u.dev.Close())
	}
	if u.ctx != nil {
		err = multierr.Append(err, u.ctx.Close())
	}
	return err
}
