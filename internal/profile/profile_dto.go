package profile

type ProfileResponse struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Department   string  `json:"department,omitempty"`
	Site         string  `json:"site,omitempty"`
	ContractType string  `json:"contract_type,omitempty"`
	Role         string  `json:"role,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

func MapToResponse(p Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:           p.ID.String(),
		FullName:     p.FullName,
		Department:   p.Department,
		Site:         p.Site,
		ContractType: string(p.ContractType),
		Role:         p.Role,
	}
	if p.ManagerID != nil {
		v := p.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}
