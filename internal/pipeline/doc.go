// Package pipeline runs a batch: discover sources, reconcile and extend the
// stored settings, plan and execute every clip, resolve the concatenation
// order, and build the combined outputs.
//
// Files are processed strictly one after another. A failed clip is reported
// and skipped; the rest of the batch continues.
package pipeline
