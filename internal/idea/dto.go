package idea

// FileView is the display projection of one attachment. Content never leaves
// the draft through views.
type FileView struct {
	Filename  string   `json:"filename"`
	MediaType string   `json:"media_type"`
	Size      int64    `json:"size"`
	Kind      FileKind `json:"kind"`
	Label     string   `json:"label"`
}

// WizardView is the full form state handed to the page and API callers.
type WizardView struct {
	Step        Step       `json:"step"`
	Steps       []StepInfo `json:"steps"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Files       []FileView `json:"files"`
	CanProceed  bool       `json:"can_proceed"`
	CanSubmit   bool       `json:"can_submit"`
}

// StepActionDTO is the transport shape for step transitions: either an
// action ("next"/"back") or an explicit target step.
type StepActionDTO struct {
	Action string `json:"action,omitempty"`
	Step   int    `json:"step,omitempty"`
}

// FieldDTO carries a single text field update.
type FieldDTO struct {
	Value string `json:"value"`
}

func viewOf(w *Wizard) WizardView {
	files := make([]FileView, len(w.Draft.Files))
	for i, f := range w.Draft.Files {
		files[i] = FileView{
			Filename:  f.Filename,
			MediaType: f.MediaType,
			Size:      f.Size,
			Kind:      f.Kind(),
			Label:     DisplayLabel(f.MediaType),
		}
	}
	return WizardView{
		Step:        w.Step,
		Steps:       Steps,
		Title:       w.Draft.Title,
		Description: w.Draft.Description,
		Files:       files,
		CanProceed:  w.CanProceed(),
		CanSubmit:   w.CanSubmit(),
	}
}
