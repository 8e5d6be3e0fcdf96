// Package exporter persists pipeline artifacts and reads them back.
//
// CSVWriter owns education_clean.csv, the table the query API serves.
// Insights are stored as JSON next to it. WriteWorkbook and WriteYLSChart
// produce the optional spreadsheet and chart renditions of the same data.
//
// Every writer replaces its target atomically, so a server reading the
// clean directory never observes a half-written file.
package exporter
