// Package companion restarts the Logi Options+ agent after its settings
// database has been rewritten. The agent keeps settings in memory and would
// otherwise overwrite the change on its next save.
//
// A restart is advisory: callers log a failure and carry on.
package companion
