package dto

type SignedURLRequestDTO struct {
	Name string `json:"name" binding:"required"`
}

type SignedURLResponseDTO struct {
	URL           string `json:"url"`
	ExpiresAt     string `json:"expires_at"`
	ContainerName string `json:"container_name"`
	FolderName    string `json:"folder_name"`
	Name          string `json:"name"`
}

type ResizeRequestDTO struct {
	Name          string `json:"name" binding:"required"`
	ContainerName string `json:"container_name" binding:"required"`
	FolderName    string `json:"folder_name" binding:"required"`
	Resolution    string `json:"resolution" binding:"required"`
}

type OrchestrateRequestDTO struct {
	URL string `json:"url" binding:"required"`
}
