// Package planner decides the ordered transform stages for one clip of a
// source file and builds a FilePlan that the ffmpeg package consumes.
//
// Implemented:
//   - FilePlan, Stage, StageKind, Options, Window (types.go)
//   - BuildPlan: passthrough / still / clip -> speed -> fade matrix (planner.go)
//   - RecoverClip, RecoverFades, ValidateInteractive: batch repair and
//     interactive checks of clip and fade windows (window.go)
//   - DecomposeTempo: bounded atempo chain for arbitrary speed factors (tempo.go)
package planner
