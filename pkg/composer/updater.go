package composer

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/depshift/pkg/errors"
)

// DefaultBinary is the Composer executable looked up on PATH.
const DefaultBinary = "composer"

// Updater triggers a lock-only resolution pass by invoking the host Composer
// binary. Scripts and plugins are suppressed so the nested run cannot fire
// the same substitution hooks again.
type Updater struct {
	binary string
}

// NewUpdater returns an Updater using the given Composer binary; an empty
// string selects [DefaultBinary].
func NewUpdater(binary string) *Updater {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Updater{binary: binary}
}

// UpdateLock runs "composer update --lock" against dir without installing
// files or running scripts. The command runs synchronously; a non-zero exit
// is returned with the command's stderr tail.
func (u *Updater) UpdateLock(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, u.binary,
		"update",
		"--lock",
		"--no-install",
		"--no-scripts",
		"--no-plugins",
		"--working-dir", dir,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return errors.Wrap(errors.ErrCodeLockUpdate, err, "lock update failed in %s", dir)
		}
		return errors.Wrap(errors.ErrCodeLockUpdate, err, "lock update failed in %s: %s", dir, lastLine(msg))
	}
	return nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// NopUpdater satisfies the lock updater contract without doing anything.
// Used for dry runs and --no-lock.
type NopUpdater struct{}

// UpdateLock does nothing.
func (NopUpdater) UpdateLock(context.Context, string) error { return nil }
