package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hangxie/parquet-go/v2/types"
)

// countLeafColumns counts only leaf columns (columns with Type field) in the schema
func countLeafColumns(schema []*parquet.SchemaElement) int {
	count := 0
	for _, elem := range schema {
		// Only count elements with Type field set (leaf columns)
		if elem.IsSetType() {
			count++
		}
	}
	return count
}

// findSchemaElement finds the schema element for a given path
//
//nolint:gocognit // Complex path matching with stack-based tree traversal - inherent complexity
func findSchemaElement(schema []*parquet.SchemaElement, pathInSchema []string) *parquet.SchemaElement {
	if len(pathInSchema) == 0 || len(schema) == 0 {
		return nil
	}

	// The schema is stored as a flat list in depth-first pre-order traversal
	// We need to reconstruct paths to find the correct element

	// Build a stack-based traversal to match the full path
	type stackEntry struct {
		path       []string
		childCount int
	}

	var stack []stackEntry
	var candidates []*parquet.SchemaElement

	for _, elem := range schema {
		// Skip root element
		if elem.Name == "Parquet_go_root" || elem.Name == "" {
			continue
		}

		// Pop completed parent nodes from stack
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.childCount > 0 {
				top.childCount--
				break
			}
			stack = stack[:len(stack)-1]
		}

		// Build current path
		currentPath := make([]string, 0, len(stack)+1)
		for _, entry := range stack {
			currentPath = append(currentPath, entry.path[len(entry.path)-1])
		}
		currentPath = append(currentPath, elem.Name)

		// Check if this matches our target path
		if len(currentPath) == len(pathInSchema) {
			match := true
			for i := range pathInSchema {
				// Case-insensitive match to handle Key_value vs key_value
				if !strings.EqualFold(pathInSchema[i], currentPath[i]) {
					match = false
					break
				}
			}
			if match {
				candidates = append(candidates, elem)
			}
		}

		// Push current element to stack if it has children
		childCount := 0
		if elem.NumChildren != nil {
			childCount = int(*elem.NumChildren)
		}
		if childCount > 0 {
			stack = append(stack, stackEntry{
				path:       currentPath,
				childCount: childCount,
			})
		}
	}

	// Return the first matching candidate
	if len(candidates) > 0 {
		return candidates[0]
	}

	// Fallback: match just the leaf name (for backward compatibility with simple schemas)
	leafName := pathInSchema[len(pathInSchema)-1]
	for _, elem := range schema {
		if strings.EqualFold(elem.Name, leafName) {
			return elem
		}
	}

	return nil
}

// columnTypeOf resolves the declared column type from the parquet physical
// type plus the logical/converted type annotations.
func columnTypeOf(physical parquet.Type, elem *parquet.SchemaElement) ColumnType {
	if elem != nil && elem.LogicalType != nil {
		lt := elem.LogicalType
		switch {
		case lt.IsSetSTRING(), lt.IsSetJSON(), lt.IsSetBSON(), lt.IsSetUUID():
			return TypeString
		case lt.IsSetENUM():
			return TypeCategorical
		case lt.IsSetDATE(), lt.IsSetTIMESTAMP():
			return TypeTemporal
		case lt.IsSetDECIMAL():
			// Byte-array decimals have no lossless numeric mapping here
			if physical == parquet.Type_INT32 || physical == parquet.Type_INT64 {
				return TypeFloat
			}
			return TypeString
		case lt.IsSetINTEGER(), lt.IsSetTIME():
			return TypeInteger
		case lt.IsSetFLOAT16():
			return TypeFloat
		}
	}

	if elem != nil && elem.ConvertedType != nil {
		switch *elem.ConvertedType {
		case parquet.ConvertedType_UTF8, parquet.ConvertedType_JSON, parquet.ConvertedType_BSON:
			return TypeString
		case parquet.ConvertedType_ENUM:
			return TypeCategorical
		case parquet.ConvertedType_DATE,
			parquet.ConvertedType_TIMESTAMP_MILLIS,
			parquet.ConvertedType_TIMESTAMP_MICROS:
			return TypeTemporal
		case parquet.ConvertedType_DECIMAL:
			if physical == parquet.Type_INT32 || physical == parquet.Type_INT64 {
				return TypeFloat
			}
			return TypeString
		case parquet.ConvertedType_TIME_MILLIS, parquet.ConvertedType_TIME_MICROS,
			parquet.ConvertedType_INT_8, parquet.ConvertedType_INT_16,
			parquet.ConvertedType_INT_32, parquet.ConvertedType_INT_64,
			parquet.ConvertedType_UINT_8, parquet.ConvertedType_UINT_16,
			parquet.ConvertedType_UINT_32, parquet.ConvertedType_UINT_64:
			return TypeInteger
		}
	}

	switch physical {
	case parquet.Type_BOOLEAN:
		return TypeBoolean
	case parquet.Type_INT32, parquet.Type_INT64:
		return TypeInteger
	case parquet.Type_INT96:
		return TypeTemporal
	case parquet.Type_FLOAT, parquet.Type_DOUBLE:
		return TypeFloat
	}
	return TypeString
}

// valueFrom converts one raw decoded parquet value into a typed Value.
// Readers return nil for null entries; that becomes the explicit null marker.
func valueFrom(raw any, physical parquet.Type, elem *parquet.SchemaElement, colType ColumnType) Value {
	if raw == nil {
		return Null()
	}

	switch colType {
	case TypeTemporal:
		return temporalFrom(raw, physical, elem)
	case TypeInteger:
		switch v := raw.(type) {
		case int32:
			return Integer(int64(v))
		case int64:
			return Integer(v)
		}
	case TypeFloat:
		switch v := raw.(type) {
		case float32:
			return Float(float64(v))
		case float64:
			return Float(v)
		case int32:
			return Float(decimalToFloat(int64(v), elem))
		case int64:
			return Float(decimalToFloat(v, elem))
		}
	case TypeBoolean:
		if v, ok := raw.(bool); ok {
			return Boolean(v)
		}
	case TypeString, TypeCategorical:
		if v, ok := raw.(string); ok {
			return String(v)
		}
	}

	// Unexpected physical representation; keep the display string
	return String(fmt.Sprintf("%v", raw))
}

// decimalToFloat applies the DECIMAL scale annotation to an integer payload.
func decimalToFloat(v int64, elem *parquet.SchemaElement) float64 {
	scale := 0
	if elem != nil && elem.Scale != nil {
		scale = int(*elem.Scale)
	}
	if scale == 0 {
		return float64(v)
	}
	return float64(v) / math.Pow10(scale)
}

func temporalFrom(raw any, physical parquet.Type, elem *parquet.SchemaElement) Value {
	if physical == parquet.Type_INT96 {
		if s, ok := raw.(string); ok {
			return Temporal(types.INT96ToTime(s))
		}
		return Null()
	}

	switch v := raw.(type) {
	case int32:
		// DATE: days since unix epoch
		return Temporal(time.Unix(int64(v)*86400, 0).UTC())
	case int64:
		if elem != nil && elem.LogicalType != nil && elem.LogicalType.IsSetTIMESTAMP() {
			unit := elem.LogicalType.TIMESTAMP.Unit
			switch {
			case unit.IsSetMILLIS():
				return Temporal(time.UnixMilli(v).UTC())
			case unit.IsSetMICROS():
				return Temporal(time.UnixMicro(v).UTC())
			default:
				return Temporal(time.Unix(0, v).UTC())
			}
		}
		if elem != nil && elem.ConvertedType != nil && *elem.ConvertedType == parquet.ConvertedType_TIMESTAMP_MICROS {
			return Temporal(time.UnixMicro(v).UTC())
		}
		return Temporal(time.UnixMilli(v).UTC())
	}
	return Null()
}
