package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/service"
)

// ---- auth ----

type registerRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (s *Server) register(c *gin.Context) error {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	u, err := s.svc.Users.Register(c.Request.Context(), service.RegisterInput{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, gin.H{"message": "User registered successfully", "user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	token, u, err := s.svc.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"token": token, "user": u})
}

func (s *Server) getProfile(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := s.svc.Users.Profile(c.Request.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"user": u})
}

// profileRequest has no email, password or role: those never change here.
type profileRequest struct {
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	Phone          *string         `json:"phone"`
	Address        *domain.Address `json:"address"`
	ProfilePicture *string         `json:"profilePicture" binding:"omitempty,max=2048"`
}

func (s *Server) updateProfile(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	u, err := s.svc.Users.UpdateProfile(c.Request.Context(), me.ID, domain.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Address:        req.Address,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}

// ---- products ----

type pageResponse struct {
	Success bool `json:"success"`
	*service.Page
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) listProducts(c *gin.Context) error {
	page, err := s.svc.Catalog.List(c.Request.Context(), service.ProductQuery{
		Category:    c.Query("category"),
		NewArrivals: c.Query("newArrivals") == "true" || c.Query("isNewArrival") == "true",
		Featured:    c.Query("featured") == "true",
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
		Page:        queryInt(c, "page"),
		Limit:       queryInt(c, "limit"),
	})
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, pageResponse{Success: true, Page: page})
	return nil
}

func (s *Server) searchProducts(c *gin.Context) error {
	page, err := s.svc.Catalog.Search(c.Request.Context(), c.Query("q"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, pageResponse{Success: true, Page: page})
	return nil
}

func (s *Server) productsByCategory(c *gin.Context) error {
	page, err := s.svc.Catalog.ByCategory(c.Request.Context(), c.Param("category"), c.Query("sort"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, pageResponse{Success: true, Page: page})
	return nil
}

func (s *Server) getProduct(c *gin.Context) error {
	p, err := s.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"data": p})
}

// ---- cart ----

func (s *Server) getCart(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := s.svc.Cart.GetOrCreate(c.Request.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"data": service.NewCartView(cart)})
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (s *Server) addToCart(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req addToCartRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	cart, err := s.svc.Cart.AddItem(c.Request.Context(), me.ID, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Cart updated", "data": service.NewCartView(cart)})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	cart, err := s.svc.Cart.UpdateItem(c.Request.Context(), me.ID, c.Param("id"), req.Quantity)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Cart updated", "data": service.NewCartView(cart)})
}

func (s *Server) removeCartItem(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := s.svc.Cart.RemoveItem(c.Request.Context(), me.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Item removed", "data": service.NewCartView(cart)})
}

func (s *Server) clearCart(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := s.svc.Cart.Clear(c.Request.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Cart cleared", "data": service.NewCartView(cart)})
}

// ---- orders ----

func (s *Server) listOrders(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := s.svc.Orders.ListOrders(c.Request.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"data": orders})
}

func (s *Server) getOrder(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	o, err := s.svc.Orders.GetOrder(c.Request.Context(), me.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"data": o})
}

type createOrderRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
}

func (s *Server) createOrder(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	o, err := s.svc.Orders.CreateOrder(c.Request.Context(), me.ID, service.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, gin.H{"message": "Order placed", "data": o})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// cancelOrder serves both /cancel and /status; with no status it cancels.
func (s *Server) cancelOrder(c *gin.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req orderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	o, err := s.svc.Orders.CancelOrder(c.Request.Context(), me.ID, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	msg := "Order status updated"
	if o.Status == domain.OrderStatusCancelled {
		msg = "Order cancelled"
	}
	return ok(c, http.StatusOK, gin.H{"message": msg, "data": gin.H{"order": o}})
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

func (s *Server) updatePaymentStatus(c *gin.Context) error {
	var req paymentStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	o, err := s.svc.Orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gin.H{"message": "Payment status updated", "data": o})
}

// ---- contact ----

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Server) submitContact(c *gin.Context) error {
	var req contactRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	r, err := s.svc.Contact.Submit(c.Request.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, gin.H{
		"message": "Thank you for your message. We will get back to you soon!",
		"data":    r,
	})
}

// ---- health ----

func (s *Server) health(c *gin.Context) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{
		"status":      "OK",
		"message":     "Rosellea Backend API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"database":    pingStatus(ctx, s.svc.Store),
		"environment": s.opts.Env,
		"version":     s.opts.Version,
	}
	if s.svc.Cache != nil {
		body["cache"] = pingStatus(ctx, s.svc.Cache)
	}
	c.JSON(http.StatusOK, body)
	return nil
}

func pingStatus(ctx context.Context, p interface{ Ping(context.Context) error }) string {
	if p == nil || p.Ping(ctx) != nil {
		return "disconnected"
	}
	return "connected"
}
