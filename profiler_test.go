package clgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_ReportsMeanAndWgsizeAfterMinIterations(t *testing.T) {
	driver, queue := newTestDriver(t, incKernelSource)

	report, err := driver.Profile(queue, 16, false, 10)
	require.NoError(t, err)

	assert.Equal(t, "inc", report.Name)
	assert.Equal(t, 16, report.WGSize)
	assert.Equal(t, 128, report.TransferBytes)
	assert.GreaterOrEqual(t, report.MeanMs, 0.0)
	assert.GreaterOrEqual(t, report.CIMs, 0.0)
	assert.Nil(t, report.ValidationErr)
	assert.GreaterOrEqual(t, len(driver.Runtimes()), 10)
}

func TestProfile_CSVFormat(t *testing.T) {
	driver, queue := newTestDriver(t, incKernelSource)
	report, err := driver.Profile(queue, 16, false, 5)
	require.NoError(t, err)

	line := report.String()
	parts := strings.Split(line, ",")
	require.Len(t, parts, 5)
	assert.Equal(t, "inc", parts[0])
	assert.Equal(t, "16", parts[1])
	assert.Equal(t, "128", parts[2])
}

func TestProfile_MustValidate_RecordsFailureWithoutAborting(t *testing.T) {
	driver, queue := newTestDriver(t, noOutputKernelSource)

	report, err := driver.Profile(queue, 16, true, 5)
	require.NoError(t, err)
	require.Error(t, report.ValidationErr)

	assert.Equal(t, "E_NO_OUTPUTS,noop", report.MetaLine())
	assert.GreaterOrEqual(t, len(driver.Runtimes()), 5)
}

func TestProfile_NoValidationMetaLineWhenNotRequested(t *testing.T) {
	driver, queue := newTestDriver(t, incKernelSource)
	report, err := driver.Profile(queue, 16, false, 5)
	require.NoError(t, err)
	assert.Equal(t, "", report.MetaLine())
}
