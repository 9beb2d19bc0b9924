// Package analysis drives the multiscale difference statistics of luminance
// fields: it samples increments, fits log-normal models, computes rescaled
// structure-function moments and compares the moment profiles of two fields.
package analysis
