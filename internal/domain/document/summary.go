package document

// Summary condenses an application's uploads against its program's requirements.
type Summary struct {
	Required         int // required requirements defined by the program
	RequiredUploaded int // required requirements with any upload
	RequiredApproved int
	RequiredRejected int
	RequiredPending  int
	TotalUploaded    int
}

// Summarize folds uploads into a Summary. required holds the ids of required
// requirements; at most one upload per requirement is considered (the latest wins).
func Summarize(required []uint64, uploads []Upload) Summary {
	latest := make(map[uint64]Upload, len(uploads))
	for _, u := range uploads {
		cur, ok := latest[u.RequirementID]
		if !ok || u.ID > cur.ID {
			latest[u.RequirementID] = u
		}
	}

	s := Summary{Required: len(required), TotalUploaded: len(uploads)}
	for _, rid := range required {
		u, ok := latest[rid]
		if !ok {
			continue
		}
		s.RequiredUploaded++
		switch {
		case u.Status == StatusApproved:
			s.RequiredApproved++
		case u.Status.Rejected():
			s.RequiredRejected++
		default:
			s.RequiredPending++
		}
	}
	return s
}

func (s Summary) AllRequiredUploaded() bool { return s.RequiredUploaded == s.Required }
func (s Summary) AllRequiredApproved() bool { return s.RequiredApproved == s.Required }
