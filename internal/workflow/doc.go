// Package workflow drives one dubbing run end to end: load the source,
// split it into silence-bounded chunks, translate each chunk through the
// oracle, retime and reassemble the results on the source timeline, and
// export audio or remuxed video.
//
// Chunk-level failures never abort a run; the failed region stays silent and
// the run completes with the remaining chunks. Only missing input, download,
// decode, and configuration failures are fatal.
package workflow
