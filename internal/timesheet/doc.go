// Package timesheet turns recognized attendance-table text into day records.
//
// Recognizer output is ragged: digits are misread as letters, rows are split
// or repeated, and separators go missing. This package reconciles that text
// into a canonical, sorted list of Record values in four stages:
//
//  1. Corrector maps look-alike characters (O, l, S, ...) to digits and
//     unifies time separators to ':'.
//  2. Classifier.Classify decides whether a line opens a new day row and
//     extracts candidate HH:MM tokens.
//  3. Aggregator folds classified lines into pending days, attaching
//     continuation ("orphan") lines to the most recently opened day.
//  4. Finalize merges duplicate day rows, validates and sorts the times and
//     renders them into the fixed four-slot output shape.
//
// # Output Contract
//
// Every Record has 1 <= Day <= 31 and up to four non-empty time slots filled
// left to right in ascending order. Each non-empty slot is a zero-padded
// "HH:MM" with the hour in [0,23] and the minute in [0,59]. Records are
// unique by day and sorted ascending by day.
//
// # Error Handling
//
// Nothing in this package returns an error. Malformed lines are discarded
// and invalid time candidates are rejected individually (see CheckTime), so
// a noisy input degrades to fewer records rather than a failure.
//
// # Usage
//
//	records := timesheet.ParseText(rawText)
package timesheet
