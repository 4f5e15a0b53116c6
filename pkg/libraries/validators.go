package libraries

type CreateLibraryPayload struct {
	Name              string   `json:"name" validate:"required,max=100"`
	Type              string   `json:"type" validate:"required,oneof=external upload"`
	OwnerID           int      `json:"owner_id" validate:"required"`
	IsVisible         *bool    `json:"is_visible,omitempty"`
	ImportPaths       []string `json:"import_paths,omitempty" validate:"omitempty,max=50,dive,required"`
	ExclusionPatterns []string `json:"exclusion_patterns,omitempty" validate:"omitempty,max=50,dive,required"`
}

type ListLibrariesQuery struct {
	Limit   int  `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset  int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	OwnerID *int `query:"owner_id" json:"owner_id,omitempty"`
	Deleted bool `query:"deleted" json:"deleted,omitempty"`
}

type UpdateLibraryPayload struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	IsVisible         *bool    `json:"is_visible,omitempty"`
	ImportPaths       []string `json:"import_paths,omitempty" validate:"omitempty,max=50,dive,required"`
	ExclusionPatterns []string `json:"exclusion_patterns,omitempty" validate:"omitempty,max=50,dive,required"`
}

type ScanLibraryPayload struct {
	RefreshModifiedFiles bool `json:"refresh_modified_files,omitempty"`
	RefreshAllFiles      bool `json:"refresh_all_files,omitempty"`
}
