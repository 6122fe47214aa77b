package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ServiceFlow handles offered services and their sales
type ServiceFlow interface {
	CreateService(ctx context.Context, userID uint, req *dto.CreateServiceRequest, metadata *ClientMetadata) (*dto.ServiceDTO, error)
	UpdateService(ctx context.Context, userID uint, serviceUUID string, req *dto.UpdateServiceRequest, metadata *ClientMetadata) (*dto.ServiceDTO, error)
	ArchiveService(ctx context.Context, userID uint, serviceUUID string, metadata *ClientMetadata) error
	ListServices(ctx context.Context, userID uint) (*dto.ServiceListResponse, error)
	RecordServiceSale(ctx context.Context, userID uint, req *dto.RecordServiceSaleRequest, metadata *ClientMetadata) (*dto.ServiceSaleDTO, error)
	ServiceSales(ctx context.Context, userID uint, page, pageSize int) (*dto.ServiceSaleListResponse, error)
}

// ServiceFlowImpl implements the service business flow
type ServiceFlowImpl struct {
	serviceRepo repository.ServiceRepository
	saleRepo    repository.ServiceSaleRepository
	db          *gorm.DB
}

// NewServiceFlow creates a new service flow instance
func NewServiceFlow(serviceRepo repository.ServiceRepository, saleRepo repository.ServiceSaleRepository, db *gorm.DB) ServiceFlow {
	return &ServiceFlowImpl{serviceRepo: serviceRepo, saleRepo: saleRepo, db: db}
}

// CreateService adds a service to the caller's offerings
func (s *ServiceFlowImpl) CreateService(ctx context.Context, userID uint, req *dto.CreateServiceRequest, metadata *ClientMetadata) (*dto.ServiceDTO, error) {
	now := utils.UTCNow()
	service := &models.Service{
		UUID:        uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsArchived:  utils.ToPtr(false),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.serviceRepo.Save(ctx, service); err != nil {
		return nil, NewBusinessError("SERVICE_CREATE_FAILED", "Failed to create service", err)
	}

	result := toServiceDTO(*service)
	return &result, nil
}

// UpdateService applies a partial update to an owned service
func (s *ServiceFlowImpl) UpdateService(ctx context.Context, userID uint, serviceUUID string, req *dto.UpdateServiceRequest, metadata *ClientMetadata) (*dto.ServiceDTO, error) {
	service, err := s.ownedService(ctx, userID, serviceUUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = req.Description
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	service.UpdatedAt = utils.UTCNow()

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, NewBusinessError("SERVICE_UPDATE_FAILED", "Failed to update service", err)
	}

	result := toServiceDTO(*service)
	return &result, nil
}

// ArchiveService hides a service from listings
func (s *ServiceFlowImpl) ArchiveService(ctx context.Context, userID uint, serviceUUID string, metadata *ClientMetadata) error {
	service, err := s.ownedService(ctx, userID, serviceUUID)
	if err != nil {
		return err
	}
	if err := s.serviceRepo.Archive(ctx, service.ID); err != nil {
		return NewBusinessError("SERVICE_ARCHIVE_FAILED", "Failed to archive service", err)
	}
	return nil
}

// ListServices returns the caller's unarchived services
func (s *ServiceFlowImpl) ListServices(ctx context.Context, userID uint) (*dto.ServiceListResponse, error) {
	filter := models.ServiceFilter{UserID: &userID, IsArchived: utils.ToPtr(false)}

	total, err := s.serviceRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SERVICE_LIST_FAILED", "Failed to count services", err)
	}

	services, err := s.serviceRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("SERVICE_LIST_FAILED", "Failed to list services", err)
	}

	out := make([]dto.ServiceDTO, 0, len(services))
	for _, service := range services {
		out = append(out, toServiceDTO(*service))
	}

	return &dto.ServiceListResponse{Services: out, Total: total}, nil
}

// RecordServiceSale writes one rendered-service row; Amount defaults to
// the service price
func (s *ServiceFlowImpl) RecordServiceSale(ctx context.Context, userID uint, req *dto.RecordServiceSaleRequest, metadata *ClientMetadata) (*dto.ServiceSaleDTO, error) {
	service, err := s.ownedService(ctx, userID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}

	amount := service.Price
	if req.Amount != nil {
		amount = *req.Amount
	}

	soldAt := utils.UTCNow()
	if req.SoldAt != nil && *req.SoldAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.SoldAt); err == nil {
			soldAt = t.UTC()
		}
	}

	sale := &models.ServiceSale{
		UUID:          uuid.New(),
		UserID:        userID,
		ServiceID:     service.ID,
		Amount:        amount,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		SoldAt:        soldAt,
		CreatedAt:     utils.UTCNow(),
		UpdatedAt:     utils.UTCNow(),
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, NewBusinessError("SERVICE_SALE_FAILED", "Failed to record service sale", err)
	}

	result := toServiceSaleDTO(*sale, service)
	return &result, nil
}

// ServiceSales lists service sales, newest first
func (s *ServiceFlowImpl) ServiceSales(ctx context.Context, userID uint, page, pageSize int) (*dto.ServiceSaleListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.ServiceSaleFilter{UserID: &userID}

	total, err := s.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SERVICE_SALE_LIST_FAILED", "Failed to count service sales", err)
	}

	sales, err := s.saleRepo.ByFilter(ctx, filter, "sold_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("SERVICE_SALE_LIST_FAILED", "Failed to list service sales", err)
	}

	revenue, err := s.saleRepo.RevenueBetween(ctx, userID, time.Time{}, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("SERVICE_SALE_LIST_FAILED", "Failed to total revenue", err)
	}

	out := make([]dto.ServiceSaleDTO, 0, len(sales))
	for _, sale := range sales {
		out = append(out, toServiceSaleDTO(*sale, sale.Service))
	}

	return &dto.ServiceSaleListResponse{
		Sales:    out,
		Total:    total,
		Revenue:  revenue,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ServiceFlowImpl) ownedService(ctx context.Context, userID uint, serviceUUID string) (*models.Service, error) {
	service, err := s.serviceRepo.ByUUID(ctx, serviceUUID)
	if err != nil {
		return nil, NewBusinessError("SERVICE_LOOKUP_FAILED", "Failed to load service", err)
	}
	if service == nil || service.UserID != userID {
		return nil, NewBusinessError("SERVICE_NOT_FOUND", "Service not found", ErrServiceNotFound)
	}
	return service, nil
}

func toServiceDTO(s models.Service) dto.ServiceDTO {
	return dto.ServiceDTO{
		UUID:        s.UUID.String(),
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		IsArchived:  s.IsArchived,
	}
}

func toServiceSaleDTO(s models.ServiceSale, service *models.Service) dto.ServiceSaleDTO {
	out := dto.ServiceSaleDTO{
		UUID:          s.UUID.String(),
		Amount:        s.Amount,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		SoldAt:        s.SoldAt.Format(time.RFC3339),
	}
	if service != nil {
		out.ServiceUUID = service.UUID.String()
		out.ServiceName = service.Name
	}
	return out
}
