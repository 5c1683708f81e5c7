// Package editor hands a settings payload to an external editor.
//
// The payload is written to a temporary file, the configured editor command
// runs attached to the terminal, and the file is read back once the editor
// exits. GUI editors must be told to block, for example "code --wait".
package editor
