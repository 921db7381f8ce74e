package utils

import "io"

type flusher interface {
	Flush() error
}

type flushingWriter struct {
	destination io.Writer
	flusher     flusher
}

// NewFlushingWriter returns a writer that flushes after every write when the
// destination supports it, so output interleaves correctly with child processes.
func NewFlushingWriter(destination io.Writer) io.Writer {
	destinationFlusher, flushable := destination.(flusher)
	if !flushable {
		return destination
	}
	return &flushingWriter{destination: destination, flusher: destinationFlusher}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	return bytesWritten, writer.flusher.Flush()
}
