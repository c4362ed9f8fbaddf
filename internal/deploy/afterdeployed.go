// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/model"
)

// runDeployedOperations executes the target's post-deploy operations in
// declaration order. The first failing operation stops the chain.
func (o *Orchestrator) runDeployedOperations(target *model.Target) error {
	for i, op := range target.Deployed {
		if o.ctx.IsCancelling() {
			return nil
		}
		switch op.Type {
		case "wait":
			o.ctx.Logf(i18n.T("deploy.post_op_wait"), op.Time)
			time.Sleep(time.Duration(op.Time) * time.Millisecond)
		case "exec":
			o.ctx.Logf(i18n.T("deploy.post_op_exec"), op.Command)
			cmd := exec.Command("sh", "-c", op.Command)
			cmd.Stdout = o.ctx.Output()
			cmd.Stderr = o.ctx.Output()
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("deployed operation %d (%s): %w", i, op.Command, err)
			}
		default:
			return fmt.Errorf("deployed operation %d: unsupported type %q", i, op.Type)
		}
	}
	return nil
}
