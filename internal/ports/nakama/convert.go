package nakama

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"mineseeker/internal/domain"
)

// CellRequest is the payload of OpReveal and OpToggleFlag:
//
//	message CellRequest {
//	  int32 row = 1;
//	  int32 col = 2;
//	}
const (
	cellRequestRowField protowire.Number = 1
	cellRequestColField protowire.Number = 2
)

func decodeCellRequest(data []byte) (domain.Coord, error) {
	var coord domain.Coord
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Coord{}, protowire.ParseError(n)
		}
		data = data[n:]

		if (num == cellRequestRowField || num == cellRequestColField) && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return domain.Coord{}, protowire.ParseError(n)
			}
			data = data[n:]
			if num == cellRequestRowField {
				coord.Row = int(int32(v))
			} else {
				coord.Col = int(int32(v))
			}
			continue
		}

		// Unknown fields are skipped for forward compatibility.
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return domain.Coord{}, protowire.ParseError(n)
		}
		data = data[n:]
	}
	return coord, nil
}

func encodeCellRequest(coord domain.Coord) []byte {
	var b []byte
	b = protowire.AppendTag(b, cellRequestRowField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(int32(coord.Row))))
	b = protowire.AppendTag(b, cellRequestColField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(int32(coord.Col))))
	return b
}

// viewToStruct maps a snapshot to a google.protobuf.Struct. Cell content is
// only present where the snapshot exposes it.
func viewToStruct(v domain.View, extra map[string]interface{}) (*structpb.Struct, error) {
	rows := make([]interface{}, len(v.Cells))
	for r, row := range v.Cells {
		cells := make([]interface{}, len(row))
		for c, cell := range row {
			m := map[string]interface{}{"state": string(cell.State)}
			if cell.State == domain.CellRevealed {
				m["count"] = cell.Count
			}
			if cell.Mine {
				m["mine"] = true
			}
			cells[c] = m
		}
		rows[r] = cells
	}

	fields := map[string]interface{}{
		"dimension": v.Dimension,
		"mines":     v.MineCount,
		"flags":     v.FlagCount,
		"status":    string(v.Status),
		"cells":     rows,
	}
	for k, val := range extra {
		fields[k] = val
	}
	return structpb.NewStruct(fields)
}

func encodeView(v domain.View, extra map[string]interface{}) ([]byte, error) {
	s, err := viewToStruct(v, extra)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func encodeError(code int, message string) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}
