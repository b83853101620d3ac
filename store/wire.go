package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ISO8601 is the layout DATE attributes are stored in. Values are always
// formatted in UTC so the zone renders as "Z".
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

// FormatDate renders t the way DATE attributes are stored.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISO8601)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ToWire converts a native value into the wire member selected by t.
// A nil value becomes NULL. A value that is already a types.AttributeValue is
// passed through.
func ToWire(t AttributeType, value any) (types.AttributeValue, error) {
	if value == nil {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	if av, ok := value.(types.AttributeValue); ok {
		return av, nil
	}

	switch t {
	case TypeString:
		return &types.AttributeValueMemberS{Value: toString(value)}, nil
	case TypeNumber:
		n, err := toNumber(value)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberN{Value: n}, nil
	case TypeDate:
		s, err := toDateString(value)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberS{Value: s}, nil
	case TypeBinary:
		switch v := value.(type) {
		case []byte:
			return &types.AttributeValueMemberB{Value: v}, nil
		case string:
			return &types.AttributeValueMemberB{Value: []byte(v)}, nil
		}
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			return &types.AttributeValueMemberBOOL{Value: b}, nil
		}
	case TypeMap:
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal map: %w", err)
		}
		if _, ok := av.(*types.AttributeValueMemberM); ok {
			return av, nil
		}
	case TypeList:
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal list: %w", err)
		}
		if _, ok := av.(*types.AttributeValueMemberL); ok {
			return av, nil
		}
	case TypeStringSet:
		if ss, ok := value.([]string); ok {
			return &types.AttributeValueMemberSS{Value: ss}, nil
		}
	case TypeNumberSet:
		ns, err := toNumberSet(value)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberNS{Value: ns}, nil
	case TypeBinarySet:
		if bs, ok := value.([][]byte); ok {
			return &types.AttributeValueMemberBS{Value: bs}, nil
		}
	case TypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}

	return nil, fmt.Errorf("cannot encode %T as %s", value, t)
}

// FromWire unwraps a wire member into a native value. Numbers become int64 when
// integral and float64 otherwise; maps and lists are unwrapped recursively.
func FromWire(av types.AttributeValue) (any, error) {
	switch v := av.(type) {
	case nil:
		return nil, nil
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return parseNumber(v.Value)
	case *types.AttributeValueMemberB:
		return v.Value, nil
	case *types.AttributeValueMemberBOOL:
		return v.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberM:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			native, err := FromWire(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = native
		}
		return out, nil
	case *types.AttributeValueMemberL:
		out := make([]any, 0, len(v.Value))
		for i, item := range v.Value {
			native, err := FromWire(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, native)
		}
		return out, nil
	case *types.AttributeValueMemberSS:
		return append([]string(nil), v.Value...), nil
	case *types.AttributeValueMemberNS:
		out := make([]float64, 0, len(v.Value))
		for _, s := range v.Value {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("number set: %w", err)
			}
			out = append(out, f)
		}
		return out, nil
	case *types.AttributeValueMemberBS:
		return v.Value, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}

// FromWireMap unwraps every member of a raw item.
func FromWireMap(item map[string]types.AttributeValue) (map[string]any, error) {
	native, err := FromWire(&types.AttributeValueMemberM{Value: item})
	if err != nil {
		return nil, err
	}
	return native.(map[string]any), nil
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return FormatDate(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func toNumber(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case string:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", fmt.Errorf("%q is not a number", v)
		}
		return v, nil
	default:
		return "", fmt.Errorf("cannot encode %T as a number", value)
	}
}

func toNumberSet(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		for _, s := range v {
			if _, err := toNumber(s); err != nil {
				return nil, err
			}
		}
		return v, nil
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out, nil
	case []int64:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.FormatInt(n, 10)
		}
		return out, nil
	case []float64:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot encode %T as a number set", value)
	}
}

func toDateString(value any) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return FormatDate(v), nil
	case *time.Time:
		if v == nil {
			return "", fmt.Errorf("nil date")
		}
		return FormatDate(*v), nil
	case string:
		t, err := parseDate(v)
		if err != nil {
			return "", fmt.Errorf("%q is not an ISO-8601 date", v)
		}
		return FormatDate(t), nil
	default:
		return "", fmt.Errorf("cannot encode %T as a date", value)
	}
}

func parseNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}
