package db

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"math"
)

// Uint64SliceToBytes converts []uint64 to []byte
func Uint64SliceToBytes(data []uint64) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, data)
	return buf.Bytes()
}

// BytesToUint64Slice converts []byte to []uint64
func BytesToUint64Slice(data []byte) []uint64 {
	count := len(data) / 8
	result := make([]uint64, count)
	buf := bytes.NewReader(data)
	binary.Read(buf, binary.LittleEndian, &result)
	return result
}

// ridgeToNull stores an infinite ridge as NULL
func ridgeToNull(ridge float64) sql.NullFloat64 {
	if math.IsInf(ridge, 1) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: ridge, Valid: true}
}

func nullToRidge(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}
