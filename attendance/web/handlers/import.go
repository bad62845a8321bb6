package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"

	attendance "axiapac.com/backoffice/attendance/core"
	web "axiapac.com/backoffice/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUploadSize = 50 << 20

func (ep *Endpoint) parseUpload(file *multipart.FileHeader) ([]attendance.Punch, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	punches, err := attendance.ParsePunchFile(file.Filename, f, ep.loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Filename, err)
	}
	return punches, nil
}

// Import loads punch exports sent as multipart "files".
func (ep *Endpoint) Import(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
		return
	}

	files := c.Request.MultipartForm.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Field 'files' is required"))
		return
	}

	var punches []attendance.Punch
	for _, file := range files {
		parsed, err := ep.parseUpload(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
			return
		}
		punches = append(punches, parsed...)
	}

	var result attendance.ImportResult
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		result, err = attendance.Import(db, attendance.GroupPunches(punches))
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(result))
}
