package service

import (
	"github.com/deppfellow/swiftsave-helpdesk/internal/repository"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
)

type Services struct {
	Solicitudes *SolicitudService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Solicitudes: NewSolicitudService(repos.Solicitudes),
	}, nil
}
