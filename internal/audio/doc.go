// Package audio decodes downloaded call recordings into a mono sample buffer at
// a fixed analysis rate. WAV and MP3 containers are supported; everything else
// is rejected as a decode error.
package audio
