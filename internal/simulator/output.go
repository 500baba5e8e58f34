package simulator

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/campussim/internal/cloudwriter"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewOutputDestination picks Kafka when enabled, a file sink when an output
// path or a cloud destination is set, and the console otherwise.
func NewOutputDestination(config *models.Config) (OutputDestination, error) {
	if config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(config)
		if err != nil {
			return nil, err
		}
		return producer, nil
	}
	if config.OutputPath == "" && config.OutputDestination == "local" {
		return NewConsoleOutput(os.Stdout), nil
	}
	switch config.OutputFormat {
	case models.OutputFormatParquet:
		output, err := NewParquetOutput(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Parquet output: %w", err)
		}
		return output, nil
	case models.OutputFormatJSON:
		return NewJSONOutput(config.OutputPath, config.OutputFolder), nil
	case models.OutputFormatCSV:
		return NewCSVOutput(config.OutputPath, config.OutputFolder), nil
	case models.OutputFormatConsole, "":
		return NewConsoleOutput(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.OutputFormat)
	}
}

// partitionPath reads the timestamp of a serialised event and returns the
// decoded event with its hive-style partition.
func partitionPath(msg []byte) (map[string]interface{}, string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var event map[string]interface{}
	if err := dec.Decode(&event); err != nil {
		return nil, "", err
	}
	raw, ok := event["timestamp"].(json.Number)
	if !ok {
		return nil, "", fmt.Errorf("invalid timestamp")
	}
	ts, err := raw.Int64()
	if err != nil {
		return nil, "", fmt.Errorf("invalid timestamp %s: %w", raw, err)
	}
	eventTime := time.Unix(ts, 0).UTC()
	year, month, day := eventTime.Date()
	return event, fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour()), nil
}

type ConsoleOutput struct {
	w io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

// WriteMessage appends one JSON line per event.
func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(j.basePath, j.folder, topic, partition)
	fileKey := topic + "_" + partition
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}
	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	var errs []error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", key, err))
		}
	}
	j.files = make(map[string]*os.File)
	return errors.Join(errs...)
}

type csvFile struct {
	file    *os.File
	writer  *csv.Writer
	headers []string
}

type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*csvFile
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*csvFile),
	}
}

// WriteMessage writes one row per event. The header of a file is the sorted
// field set of the first event written to it.
func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	event, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fileKey := topic + "_" + partition
	f, ok := c.files[fileKey]
	if !ok {
		fullPath := filepath.Join(c.basePath, c.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		f = &csvFile{file: file, writer: csv.NewWriter(file), headers: headersOf(event)}
		c.files[fileKey] = f
		if err := f.writer.Write(f.headers); err != nil {
			return err
		}
	}

	row := make([]string, len(f.headers))
	for i, header := range f.headers {
		if value, ok := event[header]; ok {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := f.writer.Write(row); err != nil {
		return err
	}
	f.writer.Flush()
	return f.writer.Error()
}

func headersOf(event map[string]interface{}) []string {
	headers := make([]string, 0, len(event))
	for key := range event {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func (c *CSVOutput) Close() error {
	var errs []error
	for key, f := range c.files {
		f.writer.Flush()
		if err := f.writer.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flushing %s: %w", key, err))
		}
		if err := f.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", key, err))
		}
	}
	c.files = make(map[string]*csvFile)
	return errors.Join(errs...)
}

type parquetPart struct {
	file   source.ParquetFile
	writer *writer.ParquetWriter
}

// ParquetOutput writes EventRecord rows, one file per topic and hour, either
// locally or through a cloud writer.
type ParquetOutput struct {
	basePath           string
	folder             string
	mu                 sync.Mutex
	parts              map[string]*parquetPart
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(config *models.Config) (*ParquetOutput, error) {
	var factory cloudwriter.CloudWriterFactory
	if config.OutputDestination != "" && config.OutputDestination != "local" {
		switch config.CloudStorage.Provider {
		case "s3":
			f, err := cloudwriter.NewS3WriterFactory(config.CloudStorage.Region, "")
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			factory = f
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", config.CloudStorage.Provider)
		}
	}
	return newParquetOutput(config.OutputPath, config.OutputFolder, factory, config.CloudStorage.BucketName), nil
}

func newParquetOutput(basePath, folder string, factory cloudwriter.CloudWriterFactory, bucket string) *ParquetOutput {
	p := &ParquetOutput{
		basePath:           basePath,
		folder:             folder,
		parts:              make(map[string]*parquetPart),
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
	}
	if factory == nil {
		p.cleanup()
	}
	return p
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	var record EventRecord
	if err := json.Unmarshal(msg, &record); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := topic + "_" + partition
	part, ok := p.parts[key]
	if !ok {
		part, err = p.createPart(topic, partition)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
		p.parts[key] = part
	}
	if err := part.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createPart(topic, partition string) (*parquetPart, error) {
	if _, err := GetSchema(topic); err != nil {
		return nil, err
	}
	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := cloudwriter.ObjectKey(p.folder, topic, partition, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		var err error
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}
	pw, err := writer.NewParquetWriter(fw, new(EventRecord), 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return &parquetPart{file: fw, writer: pw}, nil
}

// cleanup removes parquet files left by an earlier run.
func (p *ParquetOutput) cleanup() {
	fullPath := filepath.Join(p.basePath, p.folder)
	err := filepath.WalkDir(fullPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".parquet" {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error cleaning up Parquet files: %v", err)
	}
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, part := range p.parts {
		if err := part.writer.WriteStop(); err != nil {
			lastErr = err
			log.Printf("Error closing writer for key %s: %v", key, err)
		}
		if err := part.file.Close(); err != nil {
			lastErr = err
			log.Printf("Error closing file for key %s: %v", key, err)
		}
	}
	p.parts = make(map[string]*parquetPart)
	return lastErr
}

// CloudParquetFile adapts a write-only cloud object to source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create hand back the same object; it is created on upload.
func (c *CloudParquetFile) Open(string) (source.ParquetFile, error)   { return c, nil }
func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
