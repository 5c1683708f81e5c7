// Package process runs external commands to completion.
//
// logisettings uses it for the two side effects that leave the process:
// handing the settings to an interactive editor, and signalling the
// Logi Options+ agent through launchctl after a write.
//
// Features:
//   - Interactive runs attached to the terminal (editors)
//   - Captured runs whose stdout/stderr are logged line by line at debug level
//   - Context cancellation and optional timeout
//   - Non-zero exit reported as ErrProcessFailed with the exit code in Result
//
// Example usage:
//
//	runner := process.NewRunner()
//	runner.SetLogger(log)
//
//	_, err := runner.Run(ctx, process.Config{
//	    Name:   "launchctl",
//	    Binary: "/bin/launchctl",
//	    Args:   []string{"kill", "SIGKILL", "gui/501/com.logi.cp-dev-mgr"},
//	})
package process
