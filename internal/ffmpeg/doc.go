// Package ffmpeg builds ffmpeg and ffprobe invocations as structured argument
// lists and runs them through a [Runner].
//
// Commands are plain values so every stage can be inspected and tested
// without the binaries installed. The pipeline only ever sees [Command],
// [Result] and [ExternalToolError].
//
// Files:
//   - command.go: Command, Result, Runner
//   - executor.go: ExecRunner (os/exec, stderr tee when verbose)
//   - builder.go: per-stage, concat, merge and probe commands
//   - errors.go: ExternalToolError and the ErrExternalTool sentinel
package ffmpeg
