package starwars

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScalarDescriptor declares a leaf type and how its values serialize.
type ScalarDescriptor struct {
	Name        string
	Description string
	Serialize   func(value any) (any, error)
	builtin     bool
}

var builtinScalars = []*ScalarDescriptor{
	{Name: "ID", Serialize: serializeID, builtin: true},
	{Name: "String", Serialize: serializeString, builtin: true},
	{Name: "Int", Serialize: serializeInt, builtin: true},
	{Name: "Float", Serialize: serializeFloat, builtin: true},
	{Name: "Boolean", Serialize: serializeBoolean, builtin: true},
}

var customScalars = []*ScalarDescriptor{
	{
		Name:        "Date",
		Description: "A calendar date in the form 2006-01-02.",
		Serialize:   serializeTime("2006-01-02"),
	},
	{
		Name:        "DateTime",
		Description: "An RFC 3339 timestamp.",
		Serialize:   serializeTime(time.RFC3339),
	},
	{
		Name:        "Duration",
		Description: "A duration such as 1h30m0s.",
		Serialize: func(value any) (any, error) {
			d, ok := value.(time.Duration)
			if !ok {
				return nil, fmt.Errorf("Duration cannot represent %T", value)
			}
			return d.String(), nil
		},
	},
}

func serializeID(value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		return v, nil
	case int:
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("ID cannot represent %T", value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, fmt.Errorf("String cannot represent %T", value)
}

func serializeInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	}
	return nil, fmt.Errorf("Int cannot represent %T", value)
}

func serializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	return nil, fmt.Errorf("Float cannot represent %T", value)
}

func serializeBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent %T", value)
}

func serializeTime(layout string) func(any) (any, error) {
	return func(value any) (any, error) {
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("cannot format %T as time", value)
		}
		return t.UTC().Format(layout), nil
	}
}

func serializeEpisode(value any) (any, error) {
	ep, ok := value.(Episode)
	if !ok {
		return nil, fmt.Errorf("Episode cannot represent %T", value)
	}
	if _, known := episodeNames[ep]; !known {
		return nil, fmt.Errorf("Episode cannot represent %d", int(ep))
	}
	return ep.String(), nil
}
