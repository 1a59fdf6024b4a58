package hal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrBadResize = errors.New("hal: bad resize step")

// ResizeStep changes the headless viewport before the given tick.
type ResizeStep struct {
	Tick          uint64
	Width, Height int
}

func (s ResizeStep) String() string {
	return fmt.Sprintf("%dx%d@%d", s.Width, s.Height, s.Tick)
}

// ParseResizeSteps parses a comma separated list of WxH@TICK, sorted by tick.
func ParseResizeSteps(s string) ([]ResizeStep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var steps []ResizeStep
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		size, tick, ok := strings.Cut(field, "@")
		if !ok {
			return nil, fmt.Errorf("%w: %q: missing @tick", ErrBadResize, field)
		}
		w, h, ok := strings.Cut(size, "x")
		if !ok {
			return nil, fmt.Errorf("%w: %q: want WxH", ErrBadResize, field)
		}
		var st ResizeStep
		var err error
		if st.Width, err = strconv.Atoi(w); err != nil || st.Width <= 0 {
			return nil, fmt.Errorf("%w: %q: width", ErrBadResize, field)
		}
		if st.Height, err = strconv.Atoi(h); err != nil || st.Height <= 0 {
			return nil, fmt.Errorf("%w: %q: height", ErrBadResize, field)
		}
		if st.Tick, err = strconv.ParseUint(tick, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: %q: tick", ErrBadResize, field)
		}
		steps = append(steps, st)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Tick < steps[j].Tick })
	return steps, nil
}
