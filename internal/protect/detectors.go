package protect

import (
	"regexp"

	"doc-translator/internal/types"
)

// detector pairs one compiled matcher with the pattern type it reports.
type detector struct {
	typ types.PatternType
	re  *regexp.Regexp
}

// detectors is the fixed priority cascade: code, then tables, then technical
// patterns, then numeric data. The first detector to claim a span wins; later
// detectors only see its placeholder.
//
// Every matcher is a structural/lexical heuristic, not a parser. The battery
// is best-effort: spans it misses are simply translated.
var detectors = []detector{
	// --- code -------------------------------------------------------------
	// Fenced code blocks (``` and ~~~), whole fence including delimiters.
	{types.PatternCode, regexp.MustCompile("(?s)```.*?```")},
	{types.PatternCode, regexp.MustCompile("(?s)~~~.*?~~~")},
	// Indented code blocks: two or more consecutive lines indented by at
	// least four spaces or a tab. A single indented line is too often just
	// formatted prose (or a table cell) to claim.
	{types.PatternCode, regexp.MustCompile(`(?m)^(?:(?: {4}|\t)[^\n]*\S[^\n]*\n){2,}`)},
	// Inline code spans.
	{types.PatternCode, regexp.MustCompile("`[^`\n]+`")},

	// --- tables -----------------------------------------------------------
	// Box-drawing / ASCII-art tables: two or more consecutive lines opening
	// with a box or rule character.
	{types.PatternTable, regexp.MustCompile(`(?m)^(?:[ \t]*[│┃║┌┐└┘├┤┬┴┼╔╗╚╝╠╣╦╩╬─━═+|][^\n]*(?:\n|$)){2,}`)},
	// Pipe-delimited tables (markdown style): two or more consecutive rows.
	{types.PatternTable, regexp.MustCompile(`(?m)^(?:[ \t]*\|[^\n]*\|[ \t]*(?:\n|$)){2,}`)},
	// Simple tables: the header / dashed rule / data shape emitted by CLI
	// tools and SQL clients, e.g. "Count\n-------\n     0\n".
	{types.PatternSimpleTable, regexp.MustCompile(`(?m)^[ \t]*[^\s-][^\n]*\n[ \t]*-{3,}[ \t]*\n(?:[ \t]*[^\n]*\S[^\n]*(?:\n|$))+`)},
	// Header underlined with '=' followed by data rows.
	{types.PatternTable, regexp.MustCompile(`(?m)^[ \t]*[^\s=][^\n]*\n[ \t]*={3,}[ \t]*\n(?:[ \t]*[^\n]*\S[^\n]*(?:\n|$))+`)},

	// --- technical --------------------------------------------------------
	// URLs before anything that could match inside one.
	{types.PatternTechnical, regexp.MustCompile(`https?://[^\s<>"')\]]+`)},
	// Timestamped log lines.
	{types.PatternTechnical, regexp.MustCompile(`(?m)^[ \t]*\[?\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}[^\n]*`)},
	// Shell prompts.
	{types.PatternTechnical, regexp.MustCompile(`(?m)^[ \t]*\$[ \t]+\S[^\n]*`)},
	// Function signatures across common languages.
	{types.PatternTechnical, regexp.MustCompile(`(?m)^[ \t]*(?:pub[ \t]+)?(?:func|def|function|fn)[ \t]+\w+[ \t]*\([^)\n]*\)[^\n]*`)},
	// Keyword-led code lines.
	{types.PatternTechnical, regexp.MustCompile(`(?m)^[ \t]*(?:import|package|return|var|const|let|class|struct|interface|public|private|SELECT|INSERT INTO|UPDATE|DELETE FROM|CREATE TABLE)\b[^\n]*`)},
	// key=value configuration lines.
	{types.PatternTechnical, regexp.MustCompile(`(?m)^[ \t]*[A-Za-z_][\w.-]*[ \t]*=[ \t]*\S[^\n]*`)},
	// File paths, Unix and Windows.
	{types.PatternTechnical, regexp.MustCompile(`(?:~|\.{1,2})?(?:/[\w.+-]+){2,}/?`)},
	{types.PatternTechnical, regexp.MustCompile(`[A-Za-z]:\\[\w.+-]+(?:\\[\w.+-]+)*\\?`)},
	// IP addresses with optional port, before bare version strings so
	// "10.0.0.1" is not half-claimed as "10.0.0".
	{types.PatternTechnical, regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(?::\d{1,5})?\b`)},
	// Version strings.
	{types.PatternTechnical, regexp.MustCompile(`\bv?\d+\.\d+\.\d+(?:[-+][\w.]+)?\b`)},
	// Return-type arrows.
	{types.PatternTechnical, regexp.MustCompile(`[\w\])>]+[ \t]*(?:->|=>)[ \t]*[\w\[\]*&<>.]+`)},

	// --- numeric ----------------------------------------------------------
	// Tabular numeric rows: three or more whitespace-separated numbers.
	{types.PatternNumeric, regexp.MustCompile(`(?m)^[ \t]*(?:[-+]?[\d,]+(?:\.\d+)?%?[ \t]+){2,}[-+]?[\d,]+(?:\.\d+)?%?[ \t]*$`)},
	// Percentages.
	{types.PatternNumeric, regexp.MustCompile(`\b\d+(?:\.\d+)?%`)},
	// Currency amounts.
	{types.PatternNumeric, regexp.MustCompile(`[$€£¥][ ]?\d[\d,]*(?:\.\d+)?`)},
	// Parenthesized statistics like "(n=42)" or "(12.5%)".
	{types.PatternNumeric, regexp.MustCompile(`\((?:[nNpP][ \t]*[=<>][ \t]*)?\d[\d.,]*%?\)`)},
}
