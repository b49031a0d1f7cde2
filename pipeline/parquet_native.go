package pipeline

import (
	"fmt"
	"math"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetSchema maps each column to a required parquet field. Absent numbers
// are stored as NaN and absent text as "".
func parquetSchema(t Table) []string {
	md := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		switch c.Kind {
		case Number:
			md[i] = fmt.Sprintf("name=%s, type=DOUBLE", c.Name)
		case Integer:
			md[i] = fmt.Sprintf("name=%s, type=INT64", c.Name)
		default:
			md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", c.Name)
		}
	}
	return md
}

func marshalParquet(t Table) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewCSVWriter(parquetSchema(t), fw, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range t.Rows {
		rec := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = parquetValue(c.Kind, row[i])
		}
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func parquetValue(kind ColumnKind, v any) interface{} {
	switch kind {
	case Number:
		if f, ok := v.(float64); ok {
			return f
		}
		return math.NaN()
	case Integer:
		if n, ok := v.(int64); ok {
			return n
		}
		return int64(0)
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	}
}
