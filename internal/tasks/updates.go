package tasks

import "fmt"

// ProgressUpdate represents one controller transition.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase    Phase  // Phase entered
	Seq      uint64 // Selection the transition belongs to
	FileName string // File being processed, if any
	Message  string // Human-readable message for display
}

func (u ProgressUpdate) String() string {
	return fmt.Sprintf("[%d] %s: %s", u.Seq, u.Phase, u.Message)
}

func readingUpdate(seq uint64, name string) ProgressUpdate {
	return ProgressUpdate{Phase: Reading, Seq: seq, FileName: name, Message: fmt.Sprintf("Reading %s...", name)}
}

func hasImageUpdate(seq uint64, name string, size int) ProgressUpdate {
	return ProgressUpdate{Phase: HasImage, Seq: seq, FileName: name, Message: fmt.Sprintf("Finished reading %s (%d bytes)", name, size)}
}

func sendingUpdate(seq uint64, name string) ProgressUpdate {
	return ProgressUpdate{Phase: Sending, Seq: seq, FileName: name, Message: "Processing image..."}
}

func hasMaskUpdate(seq uint64, name string) ProgressUpdate {
	return ProgressUpdate{Phase: HasMask, Seq: seq, FileName: name, Message: fmt.Sprintf("Received mask %s", name)}
}

func failedUpdate(seq uint64, name, msg string) ProgressUpdate {
	return ProgressUpdate{Phase: Failed, Seq: seq, FileName: name, Message: msg}
}
