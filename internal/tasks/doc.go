// Package tasks implements the upload-and-segment pipeline behind every satseg front end.
//
// # Controller
//
// [Controller] owns the only copy of the application state (the satellite image, the mask
// image, the current [Phase] and a failure message) and changes it exclusively through
// [Controller.Dispatch]. Dispatch is a reducer: it applies one [Event] and returns the next
// asynchronous stage as a [Cmd], or nil when the pipeline is idle.
//
//  1. [FilesSelected] : clears both images, starts a read ([Reading])
//  2. [ReadCompleted] : stores the satellite image ([HasImage]) or fails ([Failed])
//  3. [SendRequested] : issues the segmentation request ([Sending])
//  4. [SegmentCompleted] : stores the mask ([HasMask]) or fails ([Failed])
//
// A [Cmd] is a plain func(context.Context) Event. Front ends decide where it runs: the TUI
// hands it to bubbletea as a tea.Cmd, the web front end and the CLI call [Controller.Run],
// which loops Cmd → Event → Dispatch until the pipeline settles.
//
// # Sequence Guard
//
// Every selection increments [State.Seq], and every Event produced by a Cmd carries the
// Seq it was started under. Dispatch discards events whose Seq is not current, so a slow
// read or request from an earlier selection can never overwrite a newer image.
//
// # Single File Policy
//
// Only the first file of a selection is processed. Additional files are logged and ignored.
//
// # Pending Reads
//
// [PendingReads] tracks in-flight reads by file name. A newer read of the same name replaces
// the older entry; the older read's completion is then stale and leaves the entry alone.
//
// # Progress Reporting
//
// An optional channel receives a [ProgressUpdate] on every transition. Sends never block.
package tasks
