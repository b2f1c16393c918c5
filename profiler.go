package clgen

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"clgen/internal/device"
)

// z95 is the two-tailed 95% normal-distribution critical value, used to
// turn a standard error into a confidence half-width.
const z95 = 1.959963984540054

// ProfileReport is the summary a single profiling run of a kernel
// produces (§4.5 profile): mean runtime and its 95% confidence
// half-width, plus the workgroup size and transfer size the runs were
// conducted with. ValidationErr is set when MustValidate was requested
// and validation failed; the profiling loop still runs to completion
// regardless (the original continues profiling after a failed
// validation, only reporting it on the side channel).
type ProfileReport struct {
	Name          string
	WGSize        int
	TransferBytes int
	MeanMs        float64
	CIMs          float64
	ValidationErr error
}

// String formats the report as the documented CSV line:
// <kernel>,<wgsize>,<transfer>,<mean>,<ci>, mean and ci rounded to 6
// decimal places.
func (r ProfileReport) String() string {
	return fmt.Sprintf("%s,%d,%d,%.6f,%.6f", r.Name, r.WGSize, r.TransferBytes, r.MeanMs, r.CIMs)
}

// MetaLine formats the validation-failure side channel line
// "<ErrorKind>,<kernel_name>", or "" if validation succeeded or was not
// requested.
func (r ProfileReport) MetaLine() string {
	if r.ValidationErr == nil {
		return ""
	}
	kind, ok := errKind(r.ValidationErr)
	if !ok {
		kind = r.ValidationErr.Error()
	}
	return fmt.Sprintf("%s,%s", kind, r.Name)
}

// Profile repeats kernel runs against a fresh random payload until at
// least minIterations runtimes have been recorded, then reports the mean
// runtime and its 95% confidence half-width across every run this driver
// has ever recorded (§4.5 profile). When mustValidate is true, Validate
// runs first and any failure is recorded on the report rather than
// aborting profiling. Grounded in cldrive.py's KernelDriver.profile,
// using gonum/stat in place of the original's bespoke labm8 math helpers
// (mean, confidence interval).
func (d *KernelDriver) Profile(queue device.CommandQueue, size int, mustValidate bool, minIterations int) (ProfileReport, error) {
	report := ProfileReport{Name: d.name}

	if mustValidate {
		if err := d.Validate(queue, size); err != nil {
			report.ValidationErr = err
		}
	}

	payload, err := CreateRandomPayload(d.ctx, d.prototype.Args, size)
	if err != nil {
		return report, ErrBadDriver(err)
	}

	for len(d.runtimes) < minIterations {
		if _, err := d.Run(queue, payload); err != nil {
			return report, err
		}
	}

	report.WGSize = int(math.Round(meanInt(d.wgsizes)))
	report.TransferBytes = int(math.Round(meanInt(d.transfers)))
	mean, stddev := stat.MeanStdDev(d.runtimes, nil)
	report.MeanMs = round6(mean)
	n := float64(len(d.runtimes))
	ci := 0.0
	if n > 0 {
		ci = z95 * stddev / math.Sqrt(n)
	}
	report.CIMs = round6(ci)

	return report, nil
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func round6(v float64) float64 {
	const scale = 1e6
	return math.Round(v*scale) / scale
}
