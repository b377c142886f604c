package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrissnell/airfieldwx/internal/log"
	"github.com/chrissnell/airfieldwx/pkg/obstime"
)

type BackupFormat string

const (
	FormatCSV  BackupFormat = "csv"
	FormatJSON BackupFormat = "json"
)

// Tables that can be exported, with the column their date filter applies to.
var exportable = map[string]string{
	"rain_events":   "event_time::date",
	"runway_states": "event_time::date",
	"forecasts":     "date",
	"metars":        "created_at::date",
}

type Config struct {
	ConnectionString string
	Format           BackupFormat
	Output           string
	Tables           []string
	Start            string
	End              string
}

func main() {
	var cfg Config

	flag.StringVar(&cfg.ConnectionString, "db", "postgres://postgres@localhost:5432/airfieldwx?sslmode=disable", "PostgreSQL/TimescaleDB connection string")
	formatStr := flag.String("format", "csv", "Backup format: csv or json")
	flag.StringVar(&cfg.Output, "output", "airfieldwx_backup", "Output file base name; the table name and extension are appended")
	tables := flag.String("tables", "rain_events,runway_states", "Comma-separated tables to export (rain_events, runway_states, forecasts, metars)")
	flag.StringVar(&cfg.Start, "start", "", "Optional first date to export (YYYY-MM-DD)")
	flag.StringVar(&cfg.End, "end", "", "Optional last date to export (YYYY-MM-DD)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch BackupFormat(*formatStr) {
	case FormatCSV, FormatJSON:
		cfg.Format = BackupFormat(*formatStr)
	default:
		log.Fatalf("Invalid format: %s. Must be csv or json", *formatStr)
	}
	cfg.Tables = strings.Split(*tables, ",")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.ConnectionString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	for _, table := range cfg.Tables {
		table = strings.TrimSpace(table)
		query, args, err := buildQuery(table, cfg.Start, cfg.End)
		if err != nil {
			log.Fatalf("%v", err)
		}

		filename := fmt.Sprintf("%s_%s.%s", cfg.Output, table, cfg.Format)
		count, err := exportTable(ctx, pool, query, args, filename, cfg.Format)
		if err != nil {
			log.Fatalf("%s backup failed: %v", table, err)
		}
		log.Infof("exported %d rows from %s to %s", count, table, filename)
	}

	log.Info("backup completed successfully")
}

// buildQuery returns the export query for table, filtered to the optional
// inclusive date range.
func buildQuery(table, start, end string) (string, []any, error) {
	dateCol, ok := exportable[table]
	if !ok {
		return "", nil, fmt.Errorf("unknown table %q", table)
	}

	var where []string
	var args []any
	for _, bound := range []struct {
		value string
		op    string
	}{{start, ">="}, {end, "<="}} {
		if bound.value == "" {
			continue
		}
		d, err := obstime.ParseDate(bound.value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, d.Format(obstime.DateLayout))
		where = append(where, fmt.Sprintf("%s %s $%d::date", dateCol, bound.op, len(args)))
	}

	query := "SELECT * FROM " + table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args, nil
}

func exportTable(ctx context.Context, pool *pgxpool.Pool, query string, args []any, filename string, format BackupFormat) (int64, error) {
	file, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var w rowWriter
	switch format {
	case FormatJSON:
		w = newJSONWriter(file)
	default:
		w = newCSVWriter(file)
	}
	if err := w.header(columns); err != nil {
		return 0, err
	}

	var count int64
	for rows.Next() {
		values, err := pgx.RowToMap(rows)
		if err != nil {
			return count, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := w.row(columns, values); err != nil {
			return count, err
		}
		count++
		if count%10000 == 0 {
			log.Debugf("processed %d rows...", count)
		}
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("row iteration error: %w", err)
	}

	return count, w.close()
}

type rowWriter interface {
	header(columns []string) error
	row(columns []string, values map[string]any) error
	close() error
}

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(out io.Writer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(out)}
}

func (c *csvWriter) header(columns []string) error {
	return c.w.Write(columns)
}

func (c *csvWriter) row(columns []string, values map[string]any) error {
	record := make([]string, len(columns))
	for i, col := range columns {
		record[i] = formatValue(values[col])
	}
	return c.w.Write(record)
}

func (c *csvWriter) close() error {
	c.w.Flush()
	return c.w.Error()
}

type jsonWriter struct {
	out   io.Writer
	first bool
}

func newJSONWriter(out io.Writer) *jsonWriter {
	return &jsonWriter{out: out, first: true}
}

func (j *jsonWriter) header([]string) error {
	_, err := io.WriteString(j.out, "[\n")
	return err
}

func (j *jsonWriter) row(_ []string, values map[string]any) error {
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	if !j.first {
		if _, err := io.WriteString(j.out, ",\n"); err != nil {
			return err
		}
	}
	j.first = false
	_, err = j.out.Write(b)
	return err
}

func (j *jsonWriter) close() error {
	_, err := io.WriteString(j.out, "\n]\n")
	return err
}

// formatValue renders one column value for CSV output.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(time.RFC3339)
	case []string:
		return strings.Join(t, ";")
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
