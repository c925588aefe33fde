// Package cascade computes what has to go when a program or an application
// is deleted. It is pure; repositories and blob stores execute the plan.
package cascade

import (
	"sort"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/document"
)

// Plan lists rows and blobs to remove. Child rows are addressed through
// ApplicationIDs; BlobPaths are deleted only after the rows are gone.
type Plan struct {
	ProgramID      uint64   `json:"program_id,omitempty"` // zero when only applications are deleted
	ApplicationIDs []uint64 `json:"application_ids"`
	BlobPaths      []string `json:"blob_paths"`
}

// ForProgram plans the deletion of a program together with its applications.
func ForProgram(programID uint64, apps []application.Application, uploads []document.Upload, reports []communityservice.Report) Plan {
	p := ForApplications(apps, uploads, reports)
	p.ProgramID = programID
	return p
}

// ForApplications plans the deletion of apps and everything they own.
// Uploads and reports not owned by one of apps are ignored.
func ForApplications(apps []application.Application, uploads []document.Upload, reports []communityservice.Report) Plan {
	owned := make(map[uint64]struct{}, len(apps))
	ids := make([]uint64, 0, len(apps))
	for _, a := range apps {
		if _, dup := owned[a.ID]; dup {
			continue
		}
		owned[a.ID] = struct{}{}
		ids = append(ids, a.ID)
	}

	seen := make(map[string]struct{})
	var paths []string
	add := func(appID uint64, path string) {
		if path == "" {
			return
		}
		if _, ok := owned[appID]; !ok {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	for _, u := range uploads {
		add(u.ApplicationID, u.Path)
	}
	for _, r := range reports {
		add(r.ApplicationID, r.PhotoPath)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	sort.Strings(paths)
	return Plan{ApplicationIDs: ids, BlobPaths: paths}
}
