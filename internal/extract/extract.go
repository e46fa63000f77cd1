// Package extract implements SqlExtractor: parsing previously emitted SQL
// files back into a TableSchema, by regex tokenization narrowly targeted at
// the exact shapes SqlEmitter produces plus reasonable human edits
// (comments, whitespace). It is not a general SQL parser.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/entgen/migrator/internal/logging"
	"github.com/entgen/migrator/pkg/schema"
)

var (
	createTablePattern = func(table string) *regexp.Regexp {
		return regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(IF\s+NOT\s+EXISTS\s+)?` + regexp.QuoteMeta(table) + `\s*\(`)
	}
	primaryKeyLinePattern = regexp.MustCompile(`(?is)^PRIMARY\s+KEY\s*\(([^)]*)\)`)
	indexPattern          = func(table string) *regexp.Regexp {
		return regexp.MustCompile(`(?is)CREATE\s+(UNIQUE\s+)?INDEX\s+(\w+)\s+ON\s+` + regexp.QuoteMeta(table) + `\s*\(([^)]*)\)`)
	}
	foreignKeyPattern = func(table string) *regexp.Regexp {
		return regexp.MustCompile(`(?is)ALTER\s+TABLE\s+` + regexp.QuoteMeta(table) +
			`\s+ADD\s+CONSTRAINT\s+\w+\s+FOREIGN\s+KEY\s*\(([^)]+)\)\s+REFERENCES\s+(\w+)\s*\(([^)]+)\)\s+ON\s+DELETE\s+(CASCADE|SET\s+NULL|RESTRICT|NO\s+ACTION)`)
	}

	createTableNamePattern = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(IF\s+NOT\s+EXISTS\s+)?(\w+)`)
	alterTableNamePattern  = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+(\w+)`)
	indexOnNamePattern     = regexp.MustCompile(`(?is)CREATE\s+(?:UNIQUE\s+)?INDEX\s+\w+\s+ON\s+(\w+)`)
)

// LoadTableSchema parses the latest CREATE TABLE statement for tableName
// found under schemaDir, plus every index and foreign key declared against
// it across all *.sql files in that directory. Returns nil if no matching
// CREATE TABLE is found or the file cannot be parsed; parse failures are
// logged here as warnings, and the caller treats either nil result as a
// missing prior schema.
func LoadTableSchema(schemaDir, tableName string, log logging.Logger) *schema.TableSchema {
	files, err := sqlFiles(schemaDir)
	if err != nil {
		log.Warn(fmt.Sprintf("extract: reading %s: %v", schemaDir, err))
		return nil
	}

	createRe := createTablePattern(tableName)
	var bestFile, bestBody string
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			log.Warn(fmt.Sprintf("extract: reading %s: %v", f, err))
			continue
		}
		if createRe.MatchString(string(content)) {
			base := filepath.Base(f)
			if base > bestFile {
				bestFile = base
				bestBody = string(content)
			}
		}
	}

	if bestFile == "" {
		return nil
	}

	body, err := extractParenBody(bestBody, createRe)
	if err != nil {
		log.Warn(fmt.Sprintf("extract: table %s: %v", tableName, err))
		return nil
	}

	// Whole-line "--" comments are dropped before the body is split on
	// commas, so a comment line cannot merge into the column that follows.
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			kept = append(kept, line)
		}
	}
	body = strings.Join(kept, "\n")

	tbl := &schema.TableSchema{Name: tableName}
	columns, err := parseColumns(body)
	if err != nil {
		log.Warn(fmt.Sprintf("extract: table %s: %v", tableName, err))
		return nil
	}
	tbl.Columns = columns

	applyCompositePrimaryKey(tbl, body)

	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		tbl.Indexes = append(tbl.Indexes, parseIndexes(string(content), tableName)...)
		tbl.ForeignKeys = append(tbl.ForeignKeys, parseForeignKeys(string(content), tableName)...)
	}
	tbl.Indexes = dedupeIndexes(tbl.Indexes)

	return tbl
}

// GetExistingTables returns the union of table names referenced by any
// CREATE TABLE, ALTER TABLE, or CREATE [UNIQUE] INDEX ... ON <name>
// statement across every *.sql file in schemaDir.
func GetExistingTables(schemaDir string) (map[string]bool, error) {
	files, err := sqlFiles(schemaDir)
	if err != nil {
		return nil, err
	}

	tables := map[string]bool{}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		text := string(content)
		for _, m := range createTableNamePattern.FindAllStringSubmatch(text, -1) {
			tables[m[2]] = true
		}
		for _, m := range alterTableNamePattern.FindAllStringSubmatch(text, -1) {
			tables[m[1]] = true
		}
		for _, m := range indexOnNamePattern.FindAllStringSubmatch(text, -1) {
			tables[m[1]] = true
		}
	}
	return tables, nil
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// extractParenBody returns the text between the CREATE TABLE's opening
// paren and its matching ");", tracking nesting depth so embedded
// parenthesized expressions (DEFAULT values, etc.) don't terminate early.
func extractParenBody(content string, createRe *regexp.Regexp) (string, error) {
	loc := createRe.FindStringIndex(content)
	if loc == nil {
		return "", fmt.Errorf("CREATE TABLE not found")
	}
	start := loc[1] - 1 // position of the opening '('
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return content[start+1 : i], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated CREATE TABLE body")
}

func parseColumns(body string) ([]schema.ColumnSchema, error) {
	var columns []schema.ColumnSchema
	for _, rawLine := range splitTopLevel(body) {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "PRIMARY KEY") || strings.HasPrefix(upper, "FOREIGN KEY") || strings.HasPrefix(upper, "CONSTRAINT") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[0]
		typ := fields[1]
		tail := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		tail = strings.TrimSpace(strings.TrimPrefix(tail, fields[1]))
		tailUpper := strings.ToUpper(tail)

		col := schema.ColumnSchema{
			Name:         name,
			Type:         typ,
			IsPrimaryKey: strings.Contains(tailUpper, "PRIMARY KEY"),
		}
		col.Nullable = !strings.Contains(tailUpper, "NOT NULL")
		if col.IsPrimaryKey {
			col.Nullable = false
		}
		col.Unique = strings.Contains(tailUpper, "UNIQUE")
		col.Default = extractDefault(tail)

		columns = append(columns, col)
	}
	return columns, nil
}

// splitTopLevel splits a CREATE TABLE body into column/constraint lines on
// commas that are not nested inside parentheses.
func splitTopLevel(body string) []string {
	var lines []string
	depth := 0
	var cur strings.Builder
	for _, r := range body {
		switch r {
		case '(':
			depth++
			cur.WriteRune(r)
		case ')':
			depth--
			cur.WriteRune(r)
		case ',':
			if depth == 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteRune(r)
		case '\n':
			cur.WriteRune(' ')
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		lines = append(lines, cur.String())
	}
	return lines
}

// extractDefault runs the DEFAULT-value state machine: starting at the
// first non-space character after DEFAULT, it takes a quoted literal, a
// number, an identifier optionally followed by a balanced parenthesized
// argument list, or a bare parenthesized expression. Anything else yields
// no default.
func extractDefault(tail string) string {
	idx := findKeyword(tail, "DEFAULT")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(tail[idx+len("DEFAULT"):], " \t")
	if rest == "" {
		return ""
	}

	switch {
	case rest[0] == '\'':
		return scanQuotedLiteral(rest)
	case rest[0] == '-' || (rest[0] >= '0' && rest[0] <= '9'):
		return scanNumber(rest)
	case rest[0] == '(':
		return scanParenExpr(rest)
	case isIdentStart(rest[0]):
		return scanIdentifier(rest)
	default:
		return ""
	}
}

func findKeyword(s, kw string) int {
	upper := strings.ToUpper(s)
	return strings.Index(upper, kw)
}

func scanQuotedLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	i := 1
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if s[i] == '\'' {
			b.WriteByte('\'')
			return b.String()
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func scanNumber(s string) string {
	i := 0
	if s[i] == '-' {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return s[:i]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '.'
}

func scanIdentifier(s string) string {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '(' {
		end := matchParen(s, i)
		if end > 0 {
			return s[:end+1]
		}
	}
	return s[:i]
}

func scanParenExpr(s string) string {
	end := matchParen(s, 0)
	if end < 0 {
		return ""
	}
	return s[:end+1]
}

// matchParen returns the index of the ')' matching the '(' at open, or -1.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func applyCompositePrimaryKey(tbl *schema.TableSchema, body string) {
	var m []string
	for _, line := range splitTopLevel(body) {
		if pm := primaryKeyLinePattern.FindStringSubmatch(strings.TrimSpace(line)); pm != nil {
			m = pm
			break
		}
	}
	if m == nil {
		return
	}
	cols := splitColumnList(m[1])
	if len(cols) != 1 {
		for _, c := range cols {
			if col := tbl.Column(c); col != nil {
				col.IsPrimaryKey = false
			}
		}
		return
	}
	if col := tbl.Column(cols[0]); col != nil {
		col.IsPrimaryKey = true
		col.Nullable = false
	}
}

func splitColumnList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIndexes(content, tableName string) []schema.IndexSchema {
	re := indexPattern(tableName)
	var out []schema.IndexSchema
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, schema.IndexSchema{
			Name:    m[2],
			Columns: splitColumnList(m[3]),
			Unique:  strings.TrimSpace(m[1]) != "",
		})
	}
	return out
}

func dedupeIndexes(indexes []schema.IndexSchema) []schema.IndexSchema {
	seen := map[string]bool{}
	var out []schema.IndexSchema
	for _, idx := range indexes {
		if seen[idx.Name] {
			continue
		}
		seen[idx.Name] = true
		out = append(out, idx)
	}
	return out
}

func parseForeignKeys(content, tableName string) []schema.ForeignKeySchema {
	re := foreignKeyPattern(tableName)
	var out []schema.ForeignKeySchema
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, schema.ForeignKeySchema{
			ColumnName:       strings.TrimSpace(m[1]),
			ReferencedTable:  m[2],
			ReferencedColumn: strings.TrimSpace(m[3]),
			OnDelete:         normalizeOnDelete(m[4]),
		})
	}
	return out
}

func normalizeOnDelete(s string) string {
	return regexp.MustCompile(`\s+`).ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), " ")
}
