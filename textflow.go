package idml

import "math"

// NoFrame is the sentinel identifier marking the ends of a text frame chain.
const NoFrame = "n"

// Frame is one text frame record in a story's linked chain. Previous and Next hold frame
// identifiers, with NoFrame marking the chain's head and tail.
type Frame struct {
	ID       string
	Previous string
	Next     string
}

// OrderFrames orders the frames of one story by following Next links from the chain's head, the
// frame whose Previous is the sentinel. A repeated frame identifier is a cycle: the walk stops
// early with a warning rather than looping forever. If fewer frames are walked than given, the
// partial order is returned best-effort with a warning. Only a missing head on non-empty input
// is unrecoverable and returns nil.
func OrderFrames(frames []Frame, diags *Diagnostics) []Frame {
	if len(frames) == 0 {
		return nil
	}

	byID := make(map[string]Frame, len(frames))
	var head *Frame
	for i, frame := range frames {
		byID[frame.ID] = frame
		if frame.Previous == NoFrame && head == nil {
			head = &frames[i]
		}
	}
	if head == nil {
		diags.Structuralf("", "no head frame in chain of %d frames", len(frames))
		return nil
	}

	ordered := make([]Frame, 0, len(frames))
	visited := map[string]bool{}
	for frame, ok := *head, true; ok; frame, ok = byID[frame.Next] {
		if visited[frame.ID] {
			diags.Warnf(frame.ID, "cycle in text frame chain")
			break
		}
		visited[frame.ID] = true
		ordered = append(ordered, frame)
		if frame.Next == NoFrame {
			break
		}
	}
	if len(ordered) < len(frames) {
		diags.Warnf(head.ID, "text frame chain has %d of %d frames", len(ordered), len(frames))
	}
	return ordered
}

// isLineBreak returns true for characters that end a line.
func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028'
}

// SplitIndices partitions a story's combined text among frameCount frames, returning
// frameCount-1 split points as rune offsets. Each split targets an even fraction of the text but
// prefers to fall just after a line break near the target, searching a window proportional to
// the per-frame span. Splits are monotonically non-decreasing and clamped to the text, so
// concatenating the substrings over the splits reproduces the text exactly.
func SplitIndices(text string, frameCount int) []int {
	runes := []rune(text)
	if frameCount <= 1 || len(runes) == 0 {
		return nil
	}

	span := float64(len(runes)) / float64(frameCount)
	window := int(math.Max(math.Round(span*0.2), 20.0))

	splits := make([]int, 0, frameCount-1)
	prev := 0
	for i := 0; i < frameCount-1; i++ {
		target := int(math.Round(float64(i+1) * span))

		// prefer the line break closest to the target within the window, splitting after it
		split, best := -1, 0
		for j := target - window; j <= target+window; j++ {
			if j < 0 || len(runes) <= j || !isLineBreak(runes[j]) {
				continue
			}
			after := j + 1
			if runes[j] == '\r' && after < len(runes) && runes[after] == '\n' {
				after++
			}
			if split == -1 || abs(j-target) < abs(best-target) {
				split, best = after, j
			}
		}
		if split == -1 {
			split = target
		}

		if split < prev {
			split = prev
		} else if len(runes) < split {
			split = len(runes)
		}
		splits = append(splits, split)
		prev = split
	}
	return splits
}

// AssignRanges converts split points into per-frame [start,end) rune ranges for frameCount
// frames. The final frame always receives the remainder of the text.
func AssignRanges(textLen, frameCount int, splits []int) [][2]int {
	if frameCount <= 0 {
		return nil
	}
	ranges := make([][2]int, 0, frameCount)
	prev := 0
	for i := 0; i < frameCount; i++ {
		end := textLen
		if i < len(splits) {
			end = splits[i]
		}
		ranges = append(ranges, [2]int{prev, end})
		prev = end
	}
	return ranges
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
