package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/models"
	"github.com/ysrn87/pos_backend/utils"
)

// Regression: the full sale / stock-entry / cancellation flow against a real
// MySQL, covering stock decrement, total math, compensating restore, the
// oversell guard and the reversal guard.
func TestSaleAndStockEntryFlow(t *testing.T) {
	ctx := setupIntegration(t)

	variant := seedCatalog(t, ctx, "KOPI-250", "25000", 10)

	// sale of 4 drops stock to 6 and totals add up
	sale, err := models.CreateSale(ctx, &models.NewSale{
		Customer:      &models.NewCustomer{Name: "Walk-in", Phone: "+628123456789"},
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleItem{
			{VariantId: variant.ID, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.Status != models.SaleStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", sale.Status)
	}
	if !sale.TotalAmount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("total = %s, want 100000", sale.TotalAmount)
	}
	if got := currentStock(t, ctx, variant.ID); got != 6 {
		t.Errorf("stock after sale = %d, want 6", got)
	}
	if sale.CustomerId == nil {
		t.Error("customer was not resolved")
	}

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.TotalPrice)
	}
	if !sum.Sub(sale.DiscountAmount).Equal(sale.TotalAmount) {
		t.Errorf("total invariant broken: sum=%s discount=%s total=%s", sum, sale.DiscountAmount, sale.TotalAmount)
	}

	// cancel restores stock and is terminal
	cancelled, err := models.CancelSale(ctx, sale.ID, &models.CancelInput{Reason: "customer returned order"})
	if err != nil {
		t.Fatalf("CancelSale: %v", err)
	}
	if cancelled.Status != models.SaleStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelledAt == nil || cancelled.CancelReason == "" {
		t.Error("cancellation metadata missing")
	}
	if got := currentStock(t, ctx, variant.ID); got != 10 {
		t.Errorf("stock after cancel = %d, want 10", got)
	}

	if _, err := models.CancelSale(ctx, sale.ID, &models.CancelInput{Reason: "again"}); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("double cancel: err = %v, want ErrInvalidState", err)
	}

	// stock entry of 5 lifts stock to 15 and overwrites cost
	entry, err := models.CreateStockEntry(ctx, &models.NewStockEntry{
		Notes: "restock",
		Items: []models.NewStockEntryItem{
			{VariantId: variant.ID, Quantity: 5, CostPrice: decimal.NewFromInt(13000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateStockEntry: %v", err)
	}
	if entry.Status != models.StockEntryStatusCompleted {
		t.Fatalf("entry status = %s", entry.Status)
	}
	if got := currentStock(t, ctx, variant.ID); got != 15 {
		t.Errorf("stock after entry = %d, want 15", got)
	}
	fresh, err := models.GetProductVariant(ctx, variant.ID)
	if err != nil {
		t.Fatalf("GetProductVariant: %v", err)
	}
	if !fresh.CostPrice.Equal(decimal.NewFromInt(13000)) {
		t.Errorf("cost price = %s, want 13000", fresh.CostPrice)
	}

	// overselling 20 at stock 15 fails with no state change
	_, err = models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleItem{
			{VariantId: variant.ID, Quantity: 20},
		},
	})
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("oversell: err = %v, want ErrInsufficientStock", err)
	}
	if got := currentStock(t, ctx, variant.ID); got != 15 {
		t.Errorf("stock changed on failed sale: %d", got)
	}

	// consume down to 2, then entry reversal must be rejected
	if _, err := models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleItem{
			{VariantId: variant.ID, Quantity: 13},
		},
	}); err != nil {
		t.Fatalf("CreateSale (consume): %v", err)
	}
	if got := currentStock(t, ctx, variant.ID); got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}

	_, err = models.CancelStockEntry(ctx, entry.ID, &models.CancelInput{Reason: "wrong delivery"})
	if !errors.Is(err, models.ErrCannotReverse) {
		t.Fatalf("entry cancel: err = %v, want ErrCannotReverse", err)
	}
	if got := currentStock(t, ctx, variant.ID); got != 2 {
		t.Errorf("stock changed on rejected reversal: %d", got)
	}

	// missing reason is rejected before any work
	if _, err := models.CancelStockEntry(ctx, entry.ID, &models.CancelInput{Reason: "  "}); !errors.Is(err, models.ErrMissingReason) {
		t.Errorf("blank reason: err = %v, want ErrMissingReason", err)
	}
}

// Regression: invoice numbers within one day increment by 1 and carry the
// PREFIX-YYMMDD-NNNN shape.
func TestInvoiceNumbersIncrementWithinDay(t *testing.T) {
	ctx := setupIntegration(t)

	variant := seedCatalog(t, ctx, "TEH-330", "8000", 100)

	var numbers []string
	for i := 0; i < 3; i++ {
		sale, err := models.CreateSale(ctx, &models.NewSale{
			PaymentMethod: models.PaymentMethodCash,
			Items: []models.NewSaleItem{
				{VariantId: variant.ID, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("CreateSale #%d: %v", i+1, err)
		}
		numbers = append(numbers, sale.InvoiceNumber)
	}

	datePart := time.Now().Format("060102")
	for i, number := range numbers {
		want := fmt.Sprintf("INV-%s-%04d", datePart, i+1)
		if number != want {
			t.Errorf("invoice #%d = %q, want %q", i+1, number, want)
		}
	}

	// once the counter passes four digits, allocation must still pick the
	// numeric max: string ordering alone would rank ...-9999 above ...-10000
	// and mint a duplicate
	db := config.GetDB()
	renumber := map[string]string{
		numbers[1]: fmt.Sprintf("INV-%s-9999", datePart),
		numbers[2]: fmt.Sprintf("INV-%s-10000", datePart),
	}
	for from, to := range renumber {
		if err := db.WithContext(ctx).Model(&models.Sale{}).
			Where("invoice_number = ?", from).
			Update("invoice_number", to).Error; err != nil {
			t.Fatalf("renumber %s: %v", from, err)
		}
	}

	sale, err := models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleItem{
			{VariantId: variant.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale past 9999: %v", err)
	}
	if want := fmt.Sprintf("INV-%s-10001", datePart); sale.InvoiceNumber != want {
		t.Errorf("invoice after rollover = %q, want %q", sale.InvoiceNumber, want)
	}
}

// Regression: SALES users cannot cancel, WAREHOUSE users cannot sell.
func TestRoleGatesOnCoordinators(t *testing.T) {
	ctx := setupIntegration(t)

	variant := seedCatalog(t, ctx, "SUSU-100", "5000", 10)

	salesCtx := utils.SetUserRoleInContext(ctx, models.RoleSales)
	sale, err := models.CreateSale(salesCtx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleItem{{VariantId: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSale as SALES: %v", err)
	}

	if _, err := models.CancelSale(salesCtx, sale.ID, &models.CancelInput{Reason: "typo"}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("SALES cancel: err = %v, want ErrForbidden", err)
	}

	warehouseCtx := utils.SetUserRoleInContext(ctx, models.RoleWarehouse)
	if _, err := models.CreateSale(warehouseCtx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleItem{{VariantId: variant.ID, Quantity: 1}},
	}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("WAREHOUSE sale: err = %v, want ErrForbidden", err)
	}

	if _, err := models.CreateStockEntry(warehouseCtx, &models.NewStockEntry{
		Items: []models.NewStockEntryItem{{VariantId: variant.ID, Quantity: 2, CostPrice: decimal.NewFromInt(3000)}},
	}); err != nil {
		t.Errorf("WAREHOUSE stock entry: %v", err)
	}
}

// Regression: catalog deletes refuse while history or variants depend on the
// row; variant types and options carry the same in-use guards; customer stats
// total COMPLETED sales only.
func TestCatalogDeletesVariantOptionsAndCustomerStats(t *testing.T) {
	ctx := setupIntegration(t)

	variant := seedCatalog(t, ctx, "BAJU-M", "30000", 5)
	product, err := models.GetProduct(ctx, variant.ProductId)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}

	// category holding a product refuses delete; an empty one goes away
	if err := models.DeleteCategory(ctx, product.CategoryId); !errors.Is(err, models.ErrResourceInUse) {
		t.Errorf("DeleteCategory with products: err = %v, want ErrResourceInUse", err)
	}
	empty, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Seasonal"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := models.DeleteCategory(ctx, empty.ID); err != nil {
		t.Errorf("DeleteCategory empty: %v", err)
	}

	// variant type with options; duplicates rejected at both levels
	variantType, err := models.AddVariantType(ctx, &models.NewVariantType{
		ProductId: product.ID,
		Name:      "Size",
		Options:   []string{"S", "M"},
	})
	if err != nil {
		t.Fatalf("AddVariantType: %v", err)
	}
	if len(variantType.Options) != 2 {
		t.Fatalf("options created = %d, want 2", len(variantType.Options))
	}
	if _, err := models.AddVariantType(ctx, &models.NewVariantType{ProductId: product.ID, Name: "Size"}); err == nil {
		t.Error("duplicate variant type name accepted")
	}
	if _, err := models.AddVariantOption(ctx, variantType.ID, &models.VariantOptionValueInput{Value: "M"}); err == nil {
		t.Error("duplicate option value accepted")
	}
	extra, err := models.AddVariantOption(ctx, variantType.ID, &models.VariantOptionValueInput{Value: "L"})
	if err != nil {
		t.Fatalf("AddVariantOption: %v", err)
	}
	if _, err := models.UpdateVariantOption(ctx, extra.ID, &models.VariantOptionValueInput{Value: "XL"}); err != nil {
		t.Errorf("UpdateVariantOption: %v", err)
	}

	// a variant bound to an option blocks type and option deletion
	optionM := variantType.Options[1]
	sized, err := models.CreateProductVariant(ctx, &models.NewProductVariant{
		ProductId:    product.ID,
		Sku:          "BAJU-M-SIZED",
		Name:         "Sized",
		SellingPrice: decimal.NewFromInt(32000),
		OptionIds:    []int{optionM.ID},
	})
	if err != nil {
		t.Fatalf("CreateProductVariant with options: %v", err)
	}
	if err := models.DeleteVariantType(ctx, variantType.ID); !errors.Is(err, models.ErrResourceInUse) {
		t.Errorf("DeleteVariantType in use: err = %v, want ErrResourceInUse", err)
	}
	if err := models.DeleteVariantOption(ctx, optionM.ID); !errors.Is(err, models.ErrResourceInUse) {
		t.Errorf("DeleteVariantOption in use: err = %v, want ErrResourceInUse", err)
	}
	if err := models.DeleteVariantOption(ctx, extra.ID); err != nil {
		t.Errorf("DeleteVariantOption unused: %v", err)
	}

	// sales history pins the variant and its product
	sale, err := models.CreateSale(ctx, &models.NewSale{
		Customer:      &models.NewCustomer{Name: "Budi", Phone: "+628111222333"},
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleItem{{VariantId: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if err := models.DeleteProductVariant(ctx, variant.ID); !errors.Is(err, models.ErrResourceInUse) {
		t.Errorf("DeleteProductVariant with history: err = %v, want ErrResourceInUse", err)
	}
	if err := models.DeleteProduct(ctx, product.ID); !errors.Is(err, models.ErrResourceInUse) {
		t.Errorf("DeleteProduct with history: err = %v, want ErrResourceInUse", err)
	}

	// the history-free sized variant deletes, then the freed type follows
	if err := models.DeleteProductVariant(ctx, sized.ID); err != nil {
		t.Fatalf("DeleteProductVariant unused: %v", err)
	}
	if err := models.DeleteVariantType(ctx, variantType.ID); err != nil {
		t.Errorf("DeleteVariantType after variant removed: %v", err)
	}

	// stats count only COMPLETED sales for the customer
	if sale.CustomerId == nil {
		t.Fatal("sale has no customer id")
	}
	cancelled, err := models.CreateSale(ctx, &models.NewSale{
		CustomerId:    *sale.CustomerId,
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleItem{{VariantId: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSale #2: %v", err)
	}
	if _, err := models.CancelSale(ctx, cancelled.ID, &models.CancelInput{Reason: "mispick"}); err != nil {
		t.Fatalf("CancelSale: %v", err)
	}
	stats, err := models.GetCustomerStats(ctx, *sale.CustomerId)
	if err != nil {
		t.Fatalf("GetCustomerStats: %v", err)
	}
	if stats.TotalPurchases != 1 {
		t.Errorf("total purchases = %d, want 1", stats.TotalPurchases)
	}
	if !stats.TotalSpent.Equal(sale.TotalAmount) {
		t.Errorf("total spent = %s, want %s", stats.TotalSpent, sale.TotalAmount)
	}
}

/* test setup */

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "tokostok_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	admin := models.User{
		Email:    "owner@test.local",
		Name:     "Owner",
		Password: "x",
		Role:     models.RolePrivilege,
		Status:   models.UserStatusActive,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	ctx = utils.SetUserIdInContext(ctx, admin.ID)
	ctx = utils.SetUserNameInContext(ctx, admin.Name)
	ctx = utils.SetUserRoleInContext(ctx, models.RolePrivilege)
	return ctx
}

func seedCatalog(t *testing.T, ctx context.Context, sku string, price string, stock int) *models.ProductVariant {
	t.Helper()

	category, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Drinks " + sku})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:       "Product " + sku,
		CategoryId: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	sellingPrice, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price: %v", err)
	}
	variant, err := models.CreateProductVariant(ctx, &models.NewProductVariant{
		ProductId:     product.ID,
		Sku:           sku,
		Name:          "Regular",
		CostPrice:     sellingPrice.Div(decimal.NewFromInt(2)),
		SellingPrice:  sellingPrice,
		InitialStock:  stock,
		MinStockLevel: 2,
	})
	if err != nil {
		t.Fatalf("CreateProductVariant: %v", err)
	}
	return variant
}

func currentStock(t *testing.T, ctx context.Context, variantId int) int {
	t.Helper()
	variant, err := models.GetProductVariant(ctx, variantId)
	if err != nil {
		t.Fatalf("GetProductVariant: %v", err)
	}
	return variant.CurrentStock
}

/* docker helpers */

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pos-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pos-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=tokostok_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
