package clgen

import (
	"clgen/internal/device"
)

// maxResynthesizeAttempts bounds the "B1in must differ from A1in" retry
// loop (§4.5 step 1) so a pathological always-equal generator cannot spin
// the validator forever.
const maxResynthesizeAttempts = 64

// Validate runs the four-trial differential dynamic check (§4.5): two
// sequential-input clones and two random-input clones (resynthesized
// until they differ from the sequential input), executed through the
// driver, then checked for producing output, determinism, and (when the
// prototype has at least one non-const argument) sensitivity to input.
// Grounded in cldrive.py's KernelDriver.validate.
func (d *KernelDriver) Validate(queue device.CommandQueue, size int) error {
	a1in, err := CreateSequentialPayload(d.ctx, d.prototype.Args, size)
	if err != nil {
		return ErrBadDriver(err)
	}
	a2in, err := a1in.Clone()
	if err != nil {
		return ErrBadDriver(err)
	}

	b1in, err := CreateRandomPayload(d.ctx, d.prototype.Args, size)
	if err != nil {
		return ErrBadDriver(err)
	}
	attempts := 0
	for b1in.Equal(a1in) {
		attempts++
		if attempts > maxResynthesizeAttempts {
			return ErrBadDriver(nil)
		}
		b1in, err = CreateRandomPayload(d.ctx, d.prototype.Args, size)
		if err != nil {
			return ErrBadDriver(err)
		}
	}
	b2in, err := b1in.Clone()
	if err != nil {
		return ErrBadDriver(err)
	}

	if !a1in.Equal(a2in) {
		return ErrBadDriver(nil)
	}
	if !b1in.Equal(b2in) {
		return ErrBadDriver(nil)
	}

	a1out, err := d.Run(queue, a1in)
	if err != nil {
		return err
	}
	b1out, err := d.Run(queue, b1in)
	if err != nil {
		return err
	}
	a2out, err := d.Run(queue, a2in)
	if err != nil {
		return err
	}
	b2out, err := d.Run(queue, b2in)
	if err != nil {
		return err
	}

	if a1in.Equal(a1out) {
		return ErrNoOutputs()
	}
	if b1in.Equal(b1out) {
		return ErrNoOutputs()
	}

	if !a1out.Equal(a2out) {
		return ErrNondeterministic()
	}
	if !b1out.Equal(b2out) {
		return ErrNondeterministic()
	}

	if d.prototype.HasNonConstArg() {
		if a1out.Equal(b1out) {
			return ErrInputInsensitive()
		}
	}

	return nil
}
