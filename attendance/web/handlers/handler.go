package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	attendance "axiapac.com/backoffice/attendance/core"
	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/infrastructure/events"
	"axiapac.com/backoffice/report"
	"axiapac.com/backoffice/utils"
	web "axiapac.com/backoffice/web/common"
	"axiapac.com/backoffice/web/middlewares"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const TopicMarked = "attendance.marked"

type Options struct {
	Location  *time.Location
	Publisher events.Publisher
	Logger    *slog.Logger
	// Now is replaced in tests.
	Now func() time.Time
}

type Endpoint struct {
	base      web.Handler
	loc       *time.Location
	publisher events.Publisher
	now       func() time.Time
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, opts Options) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	endpoint := &Endpoint{
		base:      web.Handler{Dm: dm, Logger: opts.Logger},
		loc:       opts.Location,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
	r.POST("/attendance/mark", endpoint.Mark)
	r.GET("/attendance/today", endpoint.Today)
	r.GET("/attendance/report", endpoint.Report)
	r.GET("/attendance/:id", endpoint.Get)
	r.GET("/attendance", endpoint.Search)
	r.DELETE("/attendance/records/:id", endpoint.DeleteRecord)
	r.POST("/attendance/import", endpoint.Import)
}

func (ep *Endpoint) userID(c *gin.Context) (uint, bool) {
	claims, ok := middlewares.Identity(c)
	if !ok || claims.Identity.ID == 0 {
		c.JSON(http.StatusUnauthorized, web.NewErrorResponse("missing user identity"))
		return 0, false
	}
	return claims.Identity.ID, true
}

type MarkDTO struct {
	Type      model.MarkType `json:"type" binding:"omitempty,oneof=check_in check_out"`
	Timestamp *time.Time     `json:"timestamp"`
	Location  *string        `json:"location" binding:"omitempty,max=255"`
	Notes     *string        `json:"notes"`
}

type MarkedEvent struct {
	UserID       uint           `json:"user_id"`
	AttendanceID uint           `json:"attendance_id"`
	Date         string         `json:"date"`
	Type         model.MarkType `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	TotalMinutes int            `json:"total_minutes"`
	Status       model.Status   `json:"status"`
}

func (ep *Endpoint) Mark(c *gin.Context) {
	userID, ok := ep.userID(c)
	if !ok {
		return
	}

	// an empty body marks the next expected type now
	var body MarkDTO
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var day *attendance.Day
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		day, err = attendance.Mark(db, ep.loc, ep.now(), attendance.MarkInput{
			UserID:    userID,
			Type:      body.Type,
			Timestamp: body.Timestamp,
			Location:  body.Location,
			Notes:     body.Notes,
		})
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	ep.publishMarked(c, day)
	c.JSON(http.StatusCreated, web.NewSuccessResponse(day))
}

func (ep *Endpoint) publishMarked(c *gin.Context, day *attendance.Day) {
	var latest model.AttendanceRecord
	for _, r := range day.Records {
		if r.ID > latest.ID {
			latest = r
		}
	}

	event := MarkedEvent{
		UserID:       day.Attendance.UserID,
		AttendanceID: day.Attendance.ID,
		Date:         day.Attendance.Date,
		Type:         latest.Type,
		Timestamp:    latest.Timestamp,
		TotalMinutes: day.TotalMinutes,
		Status:       day.Status,
	}
	if err := ep.publisher.Publish(c.Request.Context(), ep.base.Tenant(c), TopicMarked, event); err != nil {
		// the punch is stored; dashboards catch up on the next event
		ep.base.Logger.Warn("failed to publish event", slog.String("topic", TopicMarked), slog.Any("error", err))
	}
}

func (ep *Endpoint) Today(c *gin.Context) {
	userID, ok := ep.userID(c)
	if !ok {
		return
	}

	var day *attendance.Day
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		day, err = attendance.FindDay(db, userID, utils.LocalDate(ep.now(), ep.loc))
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(day))
}

func (ep *Endpoint) Get(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var day *attendance.Day
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		day, err = attendance.LoadDay(db, id)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(day))
}

type SearchParams struct {
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	UserID *uint  `form:"user_id"`
}

func (ep *Endpoint) Search(c *gin.Context) {
	var params SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	limit, offset := web.Paging(c, 100)

	var days []model.Attendance
	var total int64
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		days, total, err = attendance.ListDays(db, attendance.DayFilter{
			UserID: params.UserID,
			From:   params.From,
			To:     params.To,
			Limit:  limit,
			Offset: offset,
		})
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(days, total, limit, offset))
}

func (ep *Endpoint) DeleteRecord(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var day *attendance.Day
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			record, err := attendance.DeleteRecord(tx, id)
			if err != nil {
				return err
			}
			day, err = attendance.Recompute(tx, record.AttendanceID)
			return err
		})
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(day))
}

func (ep *Endpoint) Report(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = ep.now().In(ep.loc).Format("2006-01")
	}
	if _, _, err := utils.MonthRange(month); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
		return
	}

	var rows []attendance.ReportRow
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		rows, err = attendance.MonthReport(db, month)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	f, err := report.Attendance(month, rows, ep.loc)
	if err != nil {
		ep.base.Fail(c, err)
		return
	}
	data, err := report.Bytes(f)
	if err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance-`+month+`.xlsx"`)
	c.Data(http.StatusOK, report.ContentType, data)
}
