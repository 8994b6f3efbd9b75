// Package delivery presents a findings report through one of three channels.
//
// Console delivery prints the report and cannot fail. File delivery writes a
// timestamped markdown report into the working directory; with no files to
// report it behaves like console delivery, and a write error degrades to
// console. Web delivery serves the dashboard and hands the commit decision to
// it ([Outcome.Pending]); a server that cannot start degrades to file
// delivery. Web never falls back to console directly and nothing is retried.
package delivery
