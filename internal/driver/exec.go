package driver

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// run invokes an external tool, streaming its stdout and stderr straight
// through to the compiler's own.
// All external-toolchain errors flow through github.com/pkg/errors so the
// driver can report a wrapped cause without losing the original exec error,
// the same pattern this corpus's gql driver uses for shelling out to `psql`.
func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s %v", name, args)
	}
	return nil
}
