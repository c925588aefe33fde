package application

import (
	"fmt"
	"time"

	"scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
)

type Operation string

const (
	OpSubmit              Operation = "submit"
	OpBeginDocumentReview Operation = "begin_document_review"
	OpApproveDocuments    Operation = "approve_documents"
	OpRejectDocuments     Operation = "reject_documents"
	OpResubmitDocuments   Operation = "resubmit_documents"
	OpVerifyEligibility   Operation = "verify_eligibility"
	OpEnroll              Operation = "enroll"
	OpRequireService      Operation = "require_service"
	OpCompleteService     Operation = "complete_service"
	OpRequestDisbursement Operation = "request_disbursement"
	OpProcessDisbursement Operation = "process_disbursement"
	OpFinalize            Operation = "finalize"
	OpReject              Operation = "reject"
	OpCancel              Operation = "cancel"
)

var Operations = []Operation{
	OpSubmit, OpBeginDocumentReview, OpApproveDocuments, OpRejectDocuments,
	OpResubmitDocuments, OpVerifyEligibility, OpEnroll, OpRequireService,
	OpCompleteService, OpRequestDisbursement, OpProcessDisbursement,
	OpFinalize, OpReject, OpCancel,
}

func (o Operation) Valid() bool {
	_, ok := permissions[o]
	return ok
}

type EffectKind string

const (
	EffectStampSubmitted     EffectKind = "stamp_submitted"
	EffectStampReviewed      EffectKind = "stamp_reviewed"
	EffectConsumeSlot        EffectKind = "consume_slot"
	EffectReleaseSlot        EffectKind = "release_slot"
	EffectCreateDisbursement EffectKind = "create_disbursement"
	EffectMarkDisbursed      EffectKind = "mark_disbursed"
	EffectCancelDisbursement EffectKind = "cancel_disbursement"
	EffectNotifyStudent      EffectKind = "notify_student"
)

// Effect is a side effect the orchestrator must perform with the transition.
// Notification fields are only set for EffectNotifyStudent.
type Effect struct {
	Kind    EffectKind        `json:"kind"`
	Title   string            `json:"title,omitempty"`
	Message string            `json:"message,omitempty"`
	Type    notification.Type `json:"type,omitempty"`
}

// Facts is everything the guards may look at.
type Facts struct {
	Now                  time.Time
	Actor                Actor
	Program              program.Program
	Student              student.Profile
	Documents            document.Summary
	ApprovedServiceHours float64
	AllowDeferredUpload  bool
}

// Transition is the outcome of a successful Decide.
type Transition struct {
	Op      Operation
	From    Status
	To      Status
	Effects []Effect
}

type permission int

const (
	permOwner permission = iota + 1
	permAdmin
)

var permissions = map[Operation]permission{
	OpSubmit:              permOwner,
	OpResubmitDocuments:   permOwner,
	OpCancel:              permOwner,
	OpBeginDocumentReview: permAdmin,
	OpApproveDocuments:    permAdmin,
	OpRejectDocuments:     permAdmin,
	OpVerifyEligibility:   permAdmin,
	OpEnroll:              permAdmin,
	OpRequireService:      permAdmin,
	OpCompleteService:     permAdmin,
	OpRequestDisbursement: permAdmin,
	OpProcessDisbursement: permAdmin,
	OpFinalize:            permAdmin,
	OpReject:              permAdmin,
}

type edge struct {
	from Status
	op   Operation
}

type rule struct {
	to      Status
	next    func(f Facts) Status // overrides to when set
	guard   func(from Status, f Facts) error
	effects func(from, to Status, f Facts) []Effect
}

type def struct {
	op   Operation
	from []Status
	rule rule
}

// transitions is the complete set of legal (status, operation) pairs.
var transitions = buildTable(
	def{OpSubmit, []Status{StatusDraft}, rule{
		to:      StatusSubmitted,
		next:    submitTarget,
		guard:   guardSubmit,
		effects: fixed(Effect{Kind: EffectStampSubmitted}),
	}},
	def{OpBeginDocumentReview, []Status{StatusSubmitted, StatusDocumentsPending}, rule{
		to:      StatusDocumentsUnderReview,
		guard:   guardReadyForReview,
		effects: fixed(notify(notification.TypeInfo, "Documents under review", "Your documents are now being reviewed.")),
	}},
	def{OpApproveDocuments, []Status{StatusDocumentsUnderReview}, rule{
		to:    StatusDocumentsApproved,
		guard: guardDocumentsApproved,
		effects: fixed(
			Effect{Kind: EffectStampReviewed},
			notify(notification.TypeSuccess, "Documents approved", "All of your required documents have been approved."),
		),
	}},
	def{OpRejectDocuments, []Status{StatusDocumentsUnderReview}, rule{
		to:    StatusDocumentsRejected,
		guard: guardSomeDocumentRejected,
		effects: fixed(
			Effect{Kind: EffectStampReviewed},
			notify(notification.TypeDanger, "Documents rejected", "One or more of your documents were rejected. Please upload corrected copies."),
		),
	}},
	def{OpResubmitDocuments, []Status{StatusDocumentsRejected}, rule{
		to:    StatusDocumentsUnderReview,
		guard: guardResubmitted,
	}},
	def{OpVerifyEligibility, []Status{StatusDocumentsApproved}, rule{
		to:      StatusEligibilityVerified,
		guard:   guardEligible,
		effects: fixed(notify(notification.TypeSuccess, "Eligibility verified", "You meet the eligibility requirements of the program.")),
	}},
	def{OpEnroll, []Status{StatusEligibilityVerified}, rule{
		to:    StatusEnrolled,
		guard: guardSlotAvailable,
		effects: fixed(
			Effect{Kind: EffectConsumeSlot},
			notify(notification.TypeSuccess, "Enrolled", "Congratulations! You have been enrolled in the scholarship program."),
		),
	}},
	def{OpRequireService, []Status{StatusEnrolled}, rule{
		to:      StatusServicePending,
		next:    requireServiceTarget,
		effects: requireServiceEffects,
	}},
	def{OpCompleteService, []Status{StatusServicePending}, rule{
		to:      StatusServiceCompleted,
		guard:   guardServiceHours,
		effects: fixed(notify(notification.TypeSuccess, "Community service completed", "Your community service hours have been completed.")),
	}},
	def{OpRequestDisbursement, []Status{StatusServiceCompleted, StatusEnrolled}, rule{
		to:      StatusDisbursementPending,
		guard:   guardDisbursementRequest,
		effects: fixed(Effect{Kind: EffectCreateDisbursement}),
	}},
	def{OpProcessDisbursement, []Status{StatusDisbursementPending}, rule{
		to: StatusDisbursementProcessed,
		effects: fixed(
			Effect{Kind: EffectMarkDisbursed},
			notify(notification.TypeSuccess, "Scholarship disbursed", "Your scholarship grant has been released."),
		),
	}},
	def{OpFinalize, []Status{StatusDisbursementProcessed}, rule{
		to:      StatusCompleted,
		effects: fixed(notify(notification.TypeInfo, "Scholarship completed", "Your scholarship application has been completed.")),
	}},
	def{OpReject, nonTerminal(), rule{
		to:      StatusRejected,
		effects: rejectEffects,
	}},
	def{OpCancel, []Status{StatusDraft, StatusSubmitted}, rule{
		to:      StatusCancelled,
		effects: fixed(Effect{Kind: EffectStampReviewed}),
	}},
)

func buildTable(defs ...def) map[edge]rule {
	t := make(map[edge]rule)
	for _, d := range defs {
		for _, from := range d.from {
			k := edge{from: from, op: d.op}
			if _, dup := t[k]; dup {
				panic(fmt.Sprintf("duplicate transition %s from %s", d.op, from))
			}
			t[k] = d.rule
		}
	}
	return t
}

func nonTerminal() []Status {
	out := make([]Status, 0, len(Statuses))
	for _, s := range Statuses {
		if !s.Terminal() {
			out = append(out, s)
		}
	}
	return out
}

// Decide validates op against the current status of a and returns the
// resulting transition. It performs no I/O.
func Decide(a Application, op Operation, f Facts) (Transition, error) {
	perm, ok := permissions[op]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if err := authorize(perm, f); err != nil {
		return Transition{}, err
	}

	r, ok := transitions[edge{from: a.Status, op: op}]
	if !ok {
		return Transition{}, &TransitionError{Op: op, Current: a.Status, Target: Target(op)}
	}
	if r.guard != nil {
		if err := r.guard(a.Status, f); err != nil {
			return Transition{}, err
		}
	}

	to := r.to
	if r.next != nil {
		to = r.next(f)
	}
	var effects []Effect
	if r.effects != nil {
		effects = r.effects(a.Status, to, f)
	}
	return Transition{Op: op, From: a.Status, To: to, Effects: effects}, nil
}

// Allowed lists the operations legal from s, ignoring guards and actors.
func Allowed(s Status) []Operation {
	var out []Operation
	for _, op := range Operations {
		if _, ok := transitions[edge{from: s, op: op}]; ok {
			out = append(out, op)
		}
	}
	return out
}

// Target is the status op normally leads to.
func Target(op Operation) Status {
	for k, r := range transitions {
		if k.op == op {
			return r.to
		}
	}
	return ""
}

// Apply moves a to t.To and performs the effects that only touch the
// application row itself.
func (t Transition) Apply(a *Application, now time.Time) {
	for _, e := range t.Effects {
		switch e.Kind {
		case EffectStampSubmitted:
			if a.SubmittedAt == nil {
				ts := now
				a.SubmittedAt = &ts
			}
		case EffectStampReviewed:
			if a.ReviewedAt == nil {
				ts := now
				a.ReviewedAt = &ts
			}
		}
	}
	a.Status = t.To
}

// Has reports whether the transition carries an effect of kind k.
func (t Transition) Has(k EffectKind) bool {
	for _, e := range t.Effects {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func authorize(p permission, f Facts) error {
	switch p {
	case permAdmin:
		if !f.Actor.IsAdmin() {
			return ErrForbidden
		}
	case permOwner:
		if f.Actor.Role != RoleStudent || f.Actor.UserID == 0 || f.Actor.UserID != f.Student.UserID {
			return ErrForbidden
		}
	}
	return nil
}

func fixed(effects ...Effect) func(Status, Status, Facts) []Effect {
	return func(Status, Status, Facts) []Effect {
		out := make([]Effect, len(effects))
		copy(out, effects)
		return out
	}
}

func notify(t notification.Type, title, msg string) Effect {
	return Effect{Kind: EffectNotifyStudent, Type: t, Title: title, Message: msg}
}

// ---- routing ----

func submitTarget(f Facts) Status {
	if !f.Documents.AllRequiredUploaded() {
		return StatusDocumentsPending
	}
	return StatusSubmitted
}

func requireServiceTarget(f Facts) Status {
	if !f.Program.RequiresService() {
		return StatusDisbursementPending
	}
	return StatusServicePending
}

func requireServiceEffects(_ Status, to Status, _ Facts) []Effect {
	if to == StatusDisbursementPending {
		return []Effect{{Kind: EffectCreateDisbursement}}
	}
	return []Effect{notify(notification.TypeInfo, "Community service required",
		"Please complete your community service hours to receive your grant.")}
}

func rejectEffects(from Status, _ Status, _ Facts) []Effect {
	effects := []Effect{{Kind: EffectStampReviewed}}
	if from.HoldsSlot() {
		effects = append(effects, Effect{Kind: EffectReleaseSlot})
	}
	if from == StatusDisbursementPending {
		effects = append(effects, Effect{Kind: EffectCancelDisbursement})
	}
	return append(effects, notify(notification.TypeDanger, "Application rejected",
		"Your scholarship application has been rejected."))
}

// ---- guards ----

func guardSubmit(_ Status, f Facts) error {
	if !f.Program.Active {
		return ErrProgramInactive
	}
	if f.Program.DeadlinePassed(f.Now) {
		return ErrDeadlinePassed
	}
	if !f.Documents.AllRequiredUploaded() && !f.AllowDeferredUpload {
		return violation(CodeDocumentsIncomplete, "%d of %d required documents uploaded",
			f.Documents.RequiredUploaded, f.Documents.Required)
	}
	return nil
}

// guardReadyForReview keeps an application out of review until every
// required document is on file; uploads close once review starts.
func guardReadyForReview(_ Status, f Facts) error {
	if f.Documents.TotalUploaded == 0 {
		return ErrNoDocuments
	}
	return requiredUploaded(f.Documents)
}

func requiredUploaded(d document.Summary) error {
	if !d.AllRequiredUploaded() {
		return violation(CodeDocumentsIncomplete, "%d of %d required documents uploaded",
			d.RequiredUploaded, d.Required)
	}
	return nil
}

func guardDocumentsApproved(_ Status, f Facts) error {
	if !f.Documents.AllRequiredApproved() {
		return violation(CodeDocumentsNotApproved, "%d of %d required documents approved",
			f.Documents.RequiredApproved, f.Documents.Required)
	}
	return nil
}

// guardSomeDocumentRejected also passes when a required document is missing,
// e.g. a requirement added after review began, so the student can upload it.
func guardSomeDocumentRejected(_ Status, f Facts) error {
	if f.Documents.RequiredRejected == 0 && f.Documents.AllRequiredUploaded() {
		return ErrNoRejectedDocuments
	}
	return nil
}

func guardResubmitted(_ Status, f Facts) error {
	if f.Documents.RequiredRejected > 0 {
		return violation(CodeDocumentsStillRejected, "%d required documents still need to be re-uploaded",
			f.Documents.RequiredRejected)
	}
	return requiredUploaded(f.Documents)
}

func guardEligible(_ Status, f Facts) error {
	p, s := f.Program, f.Student
	if !p.SchoolTypeEligibility.Accepts(s.SchoolType) {
		return violation(CodeIneligibleSchoolType, "program is open to %s students only", p.SchoolTypeEligibility)
	}
	if s.GPA < p.MinGPA {
		return violation(CodeIneligibleGPA, "GPA %.2f is below the required minimum of %.2f", s.GPA, p.MinGPA)
	}
	if s.SchoolType == program.SchoolCollege && p.MinUnits != nil {
		units := 0
		if s.Units != nil {
			units = *s.Units
		}
		if units < *p.MinUnits {
			return violation(CodeIneligibleUnits, "%d enrolled units is below the required minimum of %d", units, *p.MinUnits)
		}
	}
	return nil
}

func guardSlotAvailable(_ Status, f Facts) error {
	if f.Program.AvailableSlots <= 0 {
		return ErrSlotsExhausted
	}
	return nil
}

func guardServiceHours(_ Status, f Facts) error {
	required := f.Program.RequiredServiceHours()
	// compare in hundredths to keep 20.5 + 19.5 == 40 exact
	if roundHundredths(f.ApprovedServiceHours) < roundHundredths(required) {
		return violation(CodeInsufficientServiceHours, "%.2f of %.2f required community service hours approved",
			f.ApprovedServiceHours, required)
	}
	return nil
}

func guardDisbursementRequest(from Status, f Facts) error {
	if from == StatusEnrolled && f.Program.RequiresService() {
		return ErrServiceRequired
	}
	return nil
}

func roundHundredths(f float64) int64 {
	if f < 0 {
		return int64(f*100 - 0.5)
	}
	return int64(f*100 + 0.5)
}
