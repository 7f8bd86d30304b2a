// Package trace projects engine outcomes and faults into the DVM's
// canonical, externally-visible JSON trace surface: an untagged
// Success/Failure union distinguished by field presence, not by a
// wrapper tag.
package trace

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/value"
)

// ErrorInfo is a Failure trace's error kind and message.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success is a successful run's canonical trace body. Effects and time
// are always present, even when empty/zero.
type Success struct {
	Returned *value.Value
	Effects  *effectlog.Log
	Time     *effectlog.State
}

// Failure is a failed run's canonical trace body. Effects is omitted on
// the wire when empty; Time is omitted when zero.
type Failure struct {
	Error   ErrorInfo
	Effects *effectlog.Log
	Time    *effectlog.State
}

// FromError builds a Failure's ErrorInfo from a *faults.Error. Any other
// error is reported under the Runtime kind as a defensive fallback —
// the engine is expected to only ever raise *faults.Error.
func FromError(err error) ErrorInfo {
	if fe, ok := faults.As(err); ok {
		return ErrorInfo{Kind: string(fe.Kind), Message: fe.Message}
	}
	return ErrorInfo{Kind: string(faults.Runtime), Message: err.Error()}
}

// Trace holds exactly one of Success or Failure.
type Trace struct {
	Success *Success
	Failure *Failure
}

// OfSuccess wraps a Success trace.
func OfSuccess(s *Success) Trace { return Trace{Success: s} }

// OfFailure wraps a Failure trace.
func OfFailure(f *Failure) Trace { return Trace{Failure: f} }

// MarshalJSON renders the untagged union: Success's three fields always
// present, Failure's effects/time fields present only when non-empty.
func (t Trace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	switch {
	case t.Success != nil:
		s := t.Success
		buf.WriteByte('{')
		buf.WriteString(`"returned":`)
		rb, err := marshalReturned(s.Returned)
		if err != nil {
			return nil, err
		}
		buf.Write(rb)

		buf.WriteString(`,"effects":`)
		eb, err := json.Marshal(s.Effects)
		if err != nil {
			return nil, err
		}
		buf.Write(eb)

		fmt.Fprintf(&buf, `,"time":%d}`, tickOf(s.Time))
		return buf.Bytes(), nil

	case t.Failure != nil:
		f := t.Failure
		buf.WriteByte('{')
		buf.WriteString(`"error":`)
		eib, err := json.Marshal(f.Error)
		if err != nil {
			return nil, err
		}
		buf.Write(eib)

		if f.Effects != nil && !f.Effects.Empty() {
			buf.WriteString(`,"effects":`)
			eb, err := json.Marshal(f.Effects)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		if tickOf(f.Time) != 0 {
			fmt.Fprintf(&buf, `,"time":%d`, tickOf(f.Time))
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("trace: neither Success nor Failure set")
	}
}

func tickOf(s *effectlog.State) effectlog.Tick {
	if s == nil {
		return 0
	}
	return s.Tick
}

func marshalReturned(v *value.Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*v)
}

// UnmarshalJSON decodes a canonical trace document by inspecting field
// presence: "error" means Failure, otherwise Success.
func (t *Trace) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error    *ErrorInfo       `json:"error"`
		Returned *value.Value     `json:"returned"`
		Effects  *effectlog.Log   `json:"effects"`
		Time     *int64           `json:"time"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		state := effectlog.NewState()
		if probe.Time != nil {
			state.Tick = effectlog.Tick(*probe.Time)
		}
		effects := probe.Effects
		if effects == nil {
			effects = effectlog.New()
		}
		*t = OfFailure(&Failure{Error: *probe.Error, Effects: effects, Time: state})
		return nil
	}
	state := effectlog.NewState()
	if probe.Time != nil {
		state.Tick = effectlog.Tick(*probe.Time)
	}
	effects := probe.Effects
	if effects == nil {
		effects = effectlog.New()
	}
	*t = OfSuccess(&Success{Returned: probe.Returned, Effects: effects, Time: state})
	return nil
}
