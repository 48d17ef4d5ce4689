package application

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
)

// VendorService is the thin CRUD surface for purchase-order counterparties
type VendorService struct {
	vendors domain.VendorRepository
	logger  *logging.Logger
}

func NewVendorService(vendors domain.VendorRepository, logger *logging.Logger) *VendorService {
	return &VendorService{vendors: vendors, logger: logger.WithComponent("vendor-service")}
}

func (s *VendorService) Create(ctx context.Context, cmd CreateVendorCommand) (*VendorDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	v, err := domain.NewVendor(cmd.Name, cmd.Email, cmd.Phone, cmd.Address, cmd.Remarks)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	if err := s.vendors.Insert(ctx, v); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := toVendorDTO(v)
	return &dto, nil
}

func (s *VendorService) Update(ctx context.Context, id string, cmd UpdateVendorCommand) (*VendorDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, "vendor")
	if err != nil {
		return nil, err
	}
	v, err := s.vendors.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	v.Name = cmd.Name
	v.Email = cmd.Email
	v.Phone = cmd.Phone
	v.Address = cmd.Address
	v.Remarks = cmd.Remarks
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := toVendorDTO(v)
	return &dto, nil
}

func (s *VendorService) Get(ctx context.Context, id string) (*VendorDTO, error) {
	oid, err := parseID(id, "vendor")
	if err != nil {
		return nil, err
	}
	v, err := s.vendors.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	dto := toVendorDTO(v)
	return &dto, nil
}

func (s *VendorService) List(ctx context.Context, page api.PageRequest) ([]VendorDTO, error) {
	vs, err := s.vendors.FindAll(ctx, domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	dtos := make([]VendorDTO, 0, len(vs))
	for _, v := range vs {
		dtos = append(dtos, toVendorDTO(v))
	}
	return dtos, nil
}

func (s *VendorService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "vendor")
	if err != nil {
		return err
	}
	if err := s.vendors.Delete(ctx, oid); err != nil {
		return apperrors.MapDomainError(err)
	}
	return nil
}

// NameByID implements CounterpartyLookup for purchase orders
func (s *VendorService) NameByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return v.Name, nil
}

// CustomerService is the thin CRUD surface for sales-order counterparties
type CustomerService struct {
	customers domain.CustomerRepository
	logger    *logging.Logger
}

func NewCustomerService(customers domain.CustomerRepository, logger *logging.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger.WithComponent("customer-service")}
}

func (s *CustomerService) Create(ctx context.Context, cmd CreateCustomerCommand) (*CustomerDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	c, err := domain.NewCustomer(cmd.Name, cmd.Email, cmd.Phone, cmd.Address)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, cmd UpdateCustomerCommand) (*CustomerDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, "customer")
	if err != nil {
		return nil, err
	}
	c, err := s.customers.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	c.Name = cmd.Name
	c.Email = cmd.Email
	c.Phone = cmd.Phone
	c.Address = cmd.Address
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerDTO, error) {
	oid, err := parseID(id, "customer")
	if err != nil {
		return nil, err
	}
	c, err := s.customers.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *CustomerService) List(ctx context.Context, page api.PageRequest) ([]CustomerDTO, error) {
	cs, err := s.customers.FindAll(ctx, domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	dtos := make([]CustomerDTO, 0, len(cs))
	for _, c := range cs {
		dtos = append(dtos, toCustomerDTO(c))
	}
	return dtos, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "customer")
	if err != nil {
		return err
	}
	if err := s.customers.Delete(ctx, oid); err != nil {
		return apperrors.MapDomainError(err)
	}
	return nil
}

// NameByID implements CounterpartyLookup for sales orders
func (s *CustomerService) NameByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}
