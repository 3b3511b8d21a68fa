package syncengine

// PathClassification is the per-path result of comparing the local and SSD
// StateMaps against the shared baseline.
type PathClassification struct {
	Path        string
	LocalChange ChangeKind
	SSDChange   ChangeKind
	Local       *FileState
	SSD         *FileState
	Baseline    *FileState
}

// Classify compares local and ssd against baseline for every RelPath
// appearing in any of the three maps and returns one PathClassification per
// path, in no particular order (the planner sorts what it needs).
func Classify(local, ssd, baseline StateMap) []PathClassification {
	paths := make(map[string]struct{}, len(local)+len(ssd)+len(baseline))

	for p := range local {
		paths[p] = struct{}{}
	}

	for p := range ssd {
		paths[p] = struct{}{}
	}

	for p := range baseline {
		paths[p] = struct{}{}
	}

	result := make([]PathClassification, 0, len(paths))

	for p := range paths {
		localState, localOK := local[p]
		ssdState, ssdOK := ssd[p]
		baselineState, baselineOK := baseline[p]

		pc := PathClassification{Path: p}

		if localOK {
			pc.Local = &localState
		}

		if ssdOK {
			pc.SSD = &ssdState
		}

		if baselineOK {
			pc.Baseline = &baselineState
		}

		pc.LocalChange = classifyOne(pc.Local, pc.Baseline)
		pc.SSDChange = classifyOne(pc.SSD, pc.Baseline)

		result = append(result, pc)
	}

	return result
}

// classifyOne classifies a single side's state against the baseline.
func classifyOne(side, baseline *FileState) ChangeKind {
	switch {
	case baseline == nil && side == nil:
		return Unchanged // path exists in the union only because of the other side
	case baseline == nil && side != nil:
		return Created
	case baseline != nil && side == nil:
		return Deleted
	case equivalent(*side, *baseline):
		return Unchanged
	default:
		return Modified
	}
}

// equivalent reports whether two FileStates describe the same content:
// same size and same hash when both hashes are known, else same size and
// same (truncated) mtime.
func equivalent(a, b FileState) bool {
	if a.Size != b.Size {
		return false
	}

	if a.Hash != nil && b.Hash != nil {
		return *a.Hash == *b.Hash
	}

	return a.Mtime.Equal(b.Mtime)
}
