/*
Package workers provides bounded fan-out for per-file work.

# Overview

Decoding a video frame holds a decoder process, its buffers and the decoded
image in memory at the same time. Running one decode per file in a folder of
hundreds of videos would exhaust memory, so work is split into small batches:

	batches run sequentially:   [a b c] -> [d e f] -> [g]
	members run concurrently:    a, b and c overlap

A batch finishes only when every member has produced a result. Members never
fail a batch: Run returns a value for every input (callers turn errors into
placeholder values), so the output always has one entry per input, in input
order.

# Basic Usage

	b := workers.Batcher[library.MediaFile, library.VideoMetadata]{
	    Size: workers.DefaultBatchSize,
	    Run:  extractOne,
	    Skip: placeholder,
	}
	results := b.Process(ctx, files)

# Cancellation

If ctx is done before a batch starts, the remaining items are not started and
Skip produces their results. Batches already running observe ctx through Run.
*/
package workers
