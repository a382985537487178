package alloc

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

// runInSubprocess runs fn in a re-exec'd copy of the test binary so a call
// to fatal's os.Exit(2) can be observed without killing the real test
// process, the standard idiom for testing fatal/os.Exit paths in Go (see
// os/exec_test.go's TestHelperProcess pattern).
func runInSubprocess(t *testing.T, fn func()) {
	t.Helper()
	const envKey = "BMALLOC_RUN_SUBPROCESS_FN"
	if os.Getenv(envKey) == "1" {
		fn()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^"+t.Name()+"$", "-test.v")
	cmd.Env = append(os.Environ(), envKey+"=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAsf(t, err, &exitErr, "subprocess output:\n%s", out)
	require.Equal(t, 2, exitErr.ExitCode(), "subprocess output:\n%s", out)
}
