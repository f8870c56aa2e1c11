package catalog

// Backend domain error codes.
const (
	CodeCategoryHasProducts        = "C.ITDx0001"
	CodeProductInvalidCategory     = "P.ITDx0001"
	CodeProductDuplicateName       = "P.ITDx0002"
	CodeProductInvalidColor        = "P.ITDx0003"
	CodeProductDuplicateColor      = "P.ITDx0004"
	CodeSubcategoryHasProducts     = "S.ITDx0001"
	CodeSubcategoryDuplicateName   = "S.ITDx0002"
	CodeSubcategoryInvalidCategory = "S.ITDx0003"
)

// User-facing messages.
const (
	MsgLoginSuccess       = "Signed in successfully!"
	MsgLoginInvalid       = "Invalid credentials"
	MsgLoginMissing       = "Fill in all fields"
	MsgLoginNoToken       = "Token not received from server"
	MsgUsernameRequired   = "Username is required"
	MsgUsernameTooShort   = "Username must be at least 3 characters"
	MsgPasswordRequired   = "Password is required"
	MsgPasswordTooShort   = "Password must be at least 4 characters"
	MsgLoggedOut          = "Signed out"
	MsgConnectionError    = "Connection error"
	MsgTimeout            = "The server took too long to respond"
	MsgSessionExpired     = "Session expired, sign in again"
	MsgUnexpectedError    = "Unexpected error"
	MsgConfirmDelete      = "Are you sure you want to delete?"
	MsgActionIrreversible = "This action cannot be undone."

	MsgCategoryCreated            = "Category created successfully!"
	MsgCategoryUpdated            = "Category updated successfully!"
	MsgCategoryDeleted            = "Category deleted successfully!"
	MsgCategoryCreateError        = "Error creating category"
	MsgCategoryUpdateError        = "Error updating category"
	MsgCategoryDeleteError        = "Error deleting category"
	MsgCategoryLoadError          = "Error loading categories"
	MsgCategoryDeleteWithProducts = "Cannot delete this category because it has products. Remove or move the products first."
	MsgCategoryNameRequired       = "Category name is required"
	MsgCategoryDescRequired       = "Category description is required"
	MsgCategoryImageRequired      = "An image is required for new categories"

	MsgSubcategoryCreated            = "Subcategory created successfully!"
	MsgSubcategoryUpdated            = "Subcategory updated successfully!"
	MsgSubcategoryDeleted            = "Subcategory deleted successfully!"
	MsgSubcategoryCreateError        = "Error creating subcategory"
	MsgSubcategoryUpdateError        = "Error updating subcategory"
	MsgSubcategoryDeleteError        = "Error deleting subcategory"
	MsgSubcategoryLoadError          = "Error loading subcategories"
	MsgSubcategoryDeleteWithProducts = "Cannot delete this subcategory because it has products. Remove or move the products first."
	MsgSubcategoryNameRequired       = "Subcategory name is required"
	MsgSubcategoryNameTooLong        = "Subcategory name is too long"
	MsgSubcategoryDuplicateName      = "A subcategory with this name already exists in the category"
	MsgSubcategoryInvalidCategory    = "The selected category does not exist"
	MsgSubcategoryLimitReached       = "This category has reached the maximum number of subcategories"
	MsgCategoryRequired              = "Category is required"

	MsgProductCreated         = "Product created successfully!"
	MsgProductUpdated         = "Product updated successfully!"
	MsgProductDeleted         = "Product deleted successfully!"
	MsgProductCreateError     = "Error creating product"
	MsgProductUpdateError     = "Error updating product"
	MsgProductDeleteError     = "Error deleting product"
	MsgProductLoadError       = "Error loading products"
	MsgProductNameRequired    = "Product name is required"
	MsgProductDescRequired    = "Product description is required"
	MsgProductPriceRequired   = "Price is required and must be greater than zero"
	MsgProductImageRequired   = "An image is required for new products"
	MsgProductTypeRequired    = "Product type is required"
	MsgProductInvalidCategory = "The selected category is not valid"
	MsgProductDuplicateName   = "A product with this name already exists"
	MsgProductInvalidColor    = "One of the product colors is not valid"
	MsgProductDuplicateColor  = "The product has a duplicated color"
	MsgColorsRequired         = "At least one color is required for multi-color products"
	MsgColorNameRequired      = "Color name is required"
	MsgColorHexRequired       = "Color code is required"
	MsgColorHexInvalid        = "Color code must be a valid hexadecimal"
	MsgColorDuplicateName     = "A color with this name already exists"
	MsgTooManyColors          = "Too many colors for a single product"
	MsgDiscountNotBelowPrice  = "Discount price must be lower than the price"

	MsgImageTooLarge = "Image is too large"
	MsgImageBadType  = "Image type is not allowed"
)

var codeMessages = map[string]string{
	CodeCategoryHasProducts:        MsgCategoryDeleteWithProducts,
	CodeProductInvalidCategory:     MsgProductInvalidCategory,
	CodeProductDuplicateName:       MsgProductDuplicateName,
	CodeProductInvalidColor:        MsgProductInvalidColor,
	CodeProductDuplicateColor:      MsgProductDuplicateColor,
	CodeSubcategoryHasProducts:     MsgSubcategoryDeleteWithProducts,
	CodeSubcategoryDuplicateName:   MsgSubcategoryDuplicateName,
	CodeSubcategoryInvalidCategory: MsgSubcategoryInvalidCategory,
}

// MessageForCode returns the user-facing message for a backend error code.
func MessageForCode(code string) (string, bool) {
	msg, ok := codeMessages[code]
	return msg, ok
}
