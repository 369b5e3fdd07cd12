// Package probe is the media prober: one ffprobe JSON call per file, reduced
// to the duration and resolution the planner needs.
//
// The ffprobe invocation goes through an [ffmpeg.Runner] so tests can feed
// canned JSON without the binary installed.
package probe
