package routes

import (
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

type UploadImageInput struct {
	Image string `json:"image" validate:"required"`
}

// UploadImage stores a single base64 photo and returns its public URL.
// Clients upload photos first, then attach the URLs to a listing.
func UploadImage(ctx iris.Context) {
	var input UploadImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	url, err := storage.UploadBase64Image(input.Image, uuid.NewString())
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to upload image"})
		return
	}

	ctx.JSON(iris.Map{"url": url})
}

type DeleteImageInput struct {
	URL string `json:"url" validate:"required"`
}

// DeleteUploadedImage removes a photo from blob storage.
func DeleteUploadedImage(ctx iris.Context) {
	var input DeleteImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := storage.DeleteImage(input.URL); err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to delete image"})
		return
	}

	ctx.JSON(iris.Map{"success": true})
}
