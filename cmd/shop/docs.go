package main

// @title Fashion Shop API
// @version 1.0
// @description Checkout, stock ledger, coupons and VNPay payments for the fashion shop
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Orders
// @tag.description Checkout and order lifecycle endpoints

// @tag.name Cart
// @tag.description Customer cart endpoints

// @tag.name Inventory
// @tag.description Stock ledger endpoints for admins

// @tag.name Payments
// @tag.description VNPay, COD and reconciliation endpoints

// @tag.name Health
// @tag.description Health check endpoints
