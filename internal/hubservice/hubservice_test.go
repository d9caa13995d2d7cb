package hubservice

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/database/dbtest"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	"github.com/itsatony/rahub/internal/repository/files"
	"github.com/itsatony/rahub/internal/repository/postgres"
	"github.com/itsatony/rahub/internal/secrets"
	"github.com/matryer/is"
)

var joe = &User{ID: "u1", Username: "joe", Prefix: "joe", Roles: []string{"user"}}

func testSetup(t *testing.T) (*is.I, context.Context, *HubService, database.DB) {
	is := is.New(t)
	db := dbtest.NewSQLite(t)

	fileRepo, err := files.NewFileRepository(files.FileConfig{BasePath: t.TempDir()})
	is.NoErr(err)
	cipher, err := secrets.NewCipher("0123456789abcdef-test")
	is.NoErr(err)

	svc := New(postgres.NewDeviceRepository(db), fileRepo, cipher, "https://ra.example.com/")
	is.NoErr(svc.Validate())
	return is, WithUser(context.Background(), joe), svc, db
}

func meteoForm() models.DeviceForm {
	return models.DeviceForm{Name: "meteo", Passphrase: "hunter2", Description: "garden station"}
}

func TestCreateDevice(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	view, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)
	is.Equal(view.ID, int64(1))
	is.Equal(view.Name, "meteo")
	is.Equal(view.Description, "garden station")
	is.Equal(view.UserID, "u1")
	is.True(!view.CreatedAt.IsZero())
	is.Equal(view.Passphrase, "hunter2")
	is.Equal(len(*view.JSONToken), tokenLength)
	is.Equal(len(*view.BlobToken), tokenLength)

	stored, err := svc.Devices.Get(ctx, view.ID)
	is.NoErr(err)
	is.Equal(stored.Name, "joe:meteo")
	is.Equal(stored.UserID, "u1")
	is.True(stored.Passphrase != "hunter2") // encrypted at rest

	plain, err := svc.Cipher.Decrypt(stored.Passphrase, "joe:meteo")
	is.NoErr(err)
	is.Equal(plain, "hunter2")
}

func TestCreateDeviceValidation(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	form := meteoForm()
	form.Name = "meteo station"
	_, err := svc.CreateDevice(ctx, form)
	is.True(errors.IsValidation(err))

	form = meteoForm()
	form.Passphrase = ""
	_, err = svc.CreateDevice(ctx, form)
	is.True(errors.IsValidation(err))

	form = meteoForm()
	form.Description = "  "
	_, err = svc.CreateDevice(ctx, form)
	is.True(errors.IsValidation(err))

	_, err = svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)
	_, err = svc.CreateDevice(ctx, meteoForm())
	is.True(errors.IsValidation(err)) // duplicate name

	_, err = svc.CreateDevice(context.Background(), meteoForm())
	is.True(err != nil) // no operator
}

func TestForeignDeviceAccess(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	device, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)

	ann := WithUser(context.Background(), &User{ID: "u2", Username: "ann", Prefix: "ann"})
	_, err = svc.GetDevice(ann, device.ID)
	is.True(errors.IsAuthorization(err))
	_, err = svc.SendConfig(ann, device.ID, "a=1")
	is.True(errors.IsAuthorization(err))
	is.True(errors.IsAuthorization(svc.DeleteDevice(ann, device.ID, true)))

	_, err = svc.GetDevice(ctx, device.ID+100)
	is.True(errors.IsNotFound(err))

	admin := WithUser(context.Background(), &User{ID: "u3", Username: "root", Roles: []string{RoleSuperAdmin}})
	view, err := svc.GetDevice(admin, device.ID)
	is.NoErr(err)
	is.Equal(view.ID, device.ID)
	is.Equal(view.Name, "meteo")
	is.Equal(view.Passphrase, "hunter2")
}

func TestFilterDeviceByRole(t *testing.T) {
	is := is.New(t)
	token := "tok"
	device := &models.Device{ID: 7, Name: "meteo", Passphrase: "hunter2", Description: "roof", UserID: "u1", JSONToken: &token, Monitoring: true}

	owned, err := filterDevice(WithUser(context.Background(), joe), device)
	is.NoErr(err)
	is.Equal(*owned, *device)

	stranger := WithUser(context.Background(), &User{ID: "u9", Username: "eve", Roles: []string{"user"}})
	visible, err := filterDevice(stranger, device)
	is.NoErr(err)
	is.Equal(visible.ID, int64(7))
	is.Equal(visible.Name, "meteo")
	is.Equal(visible.Description, "roof")
	is.True(visible.Monitoring)
	is.Equal(visible.Passphrase, "")
	is.True(visible.JSONToken == nil)
}

func TestUpdateDevice(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	created, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)

	form := meteoForm()
	form.Name = "meteo2"
	form.Passphrase = "correcthorse"
	form.Monitoring = true
	updated, err := svc.UpdateDevice(ctx, created.ID, form)
	is.NoErr(err)
	is.Equal(updated.ID, created.ID)
	is.Equal(updated.Name, "meteo2")
	is.Equal(updated.Passphrase, "correcthorse")
	is.True(updated.Monitoring)
	is.Equal(*updated.JSONToken, *created.JSONToken) // kept when left empty

	stored, err := svc.Devices.Get(ctx, created.ID)
	is.NoErr(err)
	is.Equal(stored.Name, "joe:meteo2")
	plain, err := svc.Cipher.Decrypt(stored.Passphrase, "joe:meteo2")
	is.NoErr(err)
	is.Equal(plain, "correcthorse")
}

func TestGetDeviceDetail(t *testing.T) {
	is, ctx, svc, db := testSetup(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	form := meteoForm()
	form.Monitoring = true
	form.JSONToken = "jt"
	form.BlobToken = "bt"
	device, err := svc.CreateDevice(ctx, form)
	is.NoErr(err)

	sessions := postgres.NewSessionRepository(db)
	is.NoErr(sessions.BadLogin(ctx, device.ID))

	telemetry := postgres.NewTelemetryRepository(db)
	telemetry.SetClock(func() time.Time { return now.Add(-10 * time.Minute) })
	sd := &models.SessionDevice{SessionID: 1, DeviceID: device.ID}
	is.NoErr(telemetry.ProcessChannelDefinition(ctx, sd, models.ChannelDefinition{Channel: 1, DeviceClass: models.DeviceClassAnalog, MsgRate: 60, Name: "a-late"}))
	is.NoErr(telemetry.ProcessChannelDefinition(ctx, sd, models.ChannelDefinition{Channel: 2, DeviceClass: models.DeviceClassAnalog, MsgRate: 3600, Name: "b-fresh"}))
	is.NoErr(telemetry.ProcessChannelDefinition(ctx, sd, models.ChannelDefinition{Channel: 3, DeviceClass: models.DeviceClassAnalog, MsgRate: 60, Name: "c-silent"}))
	for _, ch := range []int{1, 2} {
		sensor, err := telemetry.GetSensorByChannel(ctx, device.ID, ch)
		is.NoErr(err)
		is.NoErr(telemetry.SaveData(ctx, sd, sensor, 0, 1, "ip", 1, 0, ""))
	}
	_, err = telemetry.SaveBlob(ctx, sd, models.BlobUpload{Time: now, Extension: "jpg", FileSize: 1}, "ip")
	is.NoErr(err)

	detail, err := svc.GetDeviceDetail(ctx, device.ID)
	is.NoErr(err)
	is.True(detail.ProblemMark)
	is.Equal(detail.BlobCount, int64(1))
	is.Equal(detail.Device.Passphrase, "hunter2")
	is.Equal(detail.JSONURL, "https://ra.example.com/json/data/jt/1/")
	is.Equal(detail.GalleryURL, "https://ra.example.com/gallery/bt/1/")

	is.Equal(len(detail.Sensors), 3)
	is.Equal(detail.Sensors[0].WarningIcon, models.WarningMonitored)
	is.Equal(detail.Sensors[1].WarningIcon, models.WarningNone)
	is.Equal(detail.Sensors[2].WarningIcon, models.WarningNone)
}

func TestSendConfig(t *testing.T) {
	is, ctx, svc, db := testSetup(t)

	device, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)

	_, err = svc.SendConfig(ctx, device.ID, " ")
	is.True(errors.IsValidation(err))

	sessions := postgres.NewSessionRepository(db)
	sessionID, err := sessions.CreateSession(ctx, device.ID, true, "h", "k", "ip", "app")
	is.NoErr(err)

	config, err := svc.SendConfig(ctx, device.ID, "interval=60")
	is.NoErr(err)
	is.Equal(config.Version, int64(1))

	config, err = svc.SendConfig(ctx, device.ID, "interval=30")
	is.NoErr(err)
	is.Equal(config.Version, int64(2))

	_, err = sessions.CheckSession(ctx, sessionID, "h")
	is.True(errors.IsNotFound(err))
}

func storeBlob(is *is.I, ctx context.Context, svc *HubService, db database.DB, deviceID int64, desc, ext, payload string) int64 {
	telemetry := postgres.NewTelemetryRepository(db)
	upload := models.BlobUpload{
		Time:        time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC),
		Description: desc,
		Extension:   ext,
		FileSize:    int64(len(payload)),
	}
	id, err := telemetry.SaveBlob(ctx, &models.SessionDevice{SessionID: 1, DeviceID: deviceID}, upload, "ip")
	is.NoErr(err)

	name, err := svc.Files.Store(ctx, &models.Blob{ID: id, DeviceID: deviceID, DataTime: upload.Time, Extension: ext, FileSize: upload.FileSize}, strings.NewReader(payload))
	is.NoErr(err)
	is.NoErr(telemetry.UpdateBlob(ctx, id, name))
	return id
}

func TestGetBlobDownload(t *testing.T) {
	is, ctx, svc, db := testSetup(t)

	device, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)

	blobID := storeBlob(is, ctx, svc, db, device.ID, "Přední dveře #1", "csv", "t;v\n1;2\n")

	download, err := svc.GetBlobDownload(ctx, device.ID, blobID)
	is.NoErr(err)
	defer download.Body.Close()
	is.Equal(download.FileName, "20240301_123005_1_predni-dvere-1.csv")
	is.Equal(download.ContentType, "text/csv")
	content, err := io.ReadAll(download.Body)
	is.NoErr(err)
	is.Equal(string(content), "t;v\n1;2\n")

	pending, err := postgres.NewTelemetryRepository(db).SaveBlob(ctx, &models.SessionDevice{DeviceID: device.ID}, models.BlobUpload{Time: time.Now(), Extension: "jpg"}, "ip")
	is.NoErr(err)
	_, err = svc.GetBlobDownload(ctx, device.ID, pending)
	is.True(errors.IsNotFound(err))

	blobs, err := svc.ListBlobs(ctx, device.ID)
	is.NoErr(err)
	is.Equal(len(blobs), 2)
}

func TestDeleteDevice(t *testing.T) {
	is, ctx, svc, db := testSetup(t)

	device, err := svc.CreateDevice(ctx, meteoForm())
	is.NoErr(err)
	blobID := storeBlob(is, ctx, svc, db, device.ID, "snap", "jpg", "jpeg")
	blob, err := svc.Devices.GetBlob(ctx, device.ID, blobID)
	is.NoErr(err)

	stats, err := svc.GetDeleteStats(ctx, device.ID)
	is.NoErr(err)
	is.Equal(stats.Name, "joe:meteo")
	is.Equal(stats.BlobCount, int64(1))
	is.Equal(stats.Measures.Count, int64(0))

	is.True(errors.IsValidation(svc.DeleteDevice(ctx, device.ID, false)))

	is.NoErr(svc.DeleteDevice(ctx, device.ID, true))

	_, err = svc.Devices.Get(ctx, device.ID)
	is.True(errors.IsNotFound(err))
	_, err = svc.Files.Open(ctx, *blob.FileName)
	is.True(errors.IsNotFound(err))
}

func TestDownloadHelpers(t *testing.T) {
	is := is.New(t)

	is.Equal(webalize("Snapshot v1.2", "._"), "snapshot-v1.2")
	is.Equal(webalize("  --Žluťoučký kůň--  ", "._"), "zlutoucky-kun")
	is.Equal(webalize("", "._"), "")

	is.Equal(contentType("jpg"), "image/jpeg")
	is.Equal(contentType("csv"), "text/csv")
	is.Equal(contentType("bin"), "application/octet-stream")
}
