// Package amd classifies the opening of a recorded outbound call as a human
// pickup or an answering machine.
//
// Analysis runs in five stages, each a pure function of the previous stage's
// output: speech segmentation, answer-window selection, feature extraction,
// rule scoring and classification. Nothing is shared between calls, so a
// Detector can be used from many goroutines at once.
package amd
