package file

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/web3store/gateway/internal/middleware"
	"github.com/web3store/gateway/internal/response"
	"github.com/web3store/gateway/internal/storage"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to disk.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for file and folder endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new file Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// storeAndRecord is the creation response: the object-store result plus the
// metadata record.
type storeAndRecord struct {
	S3Data storage.UploadResult `json:"s3Data"`
	DBData *File                `json:"dbData"`
}

// TotalSize godoc
//
//	@Summary		Total uploaded size for a wallet
//	@Description	Sums the byte sizes of all non-folder records owned by the wallet.
//	@Tags			files
//	@Produce		json
//	@Param			walletAddress	query		string	true	"owning wallet address"
//	@Success		200				{object}	map[string]int64
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/totalSize [get]
func (h *Handler) TotalSize(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("walletAddress")
	if wallet == "" {
		response.BadRequest(w, "walletAddress is required")
		return
	}
	if !ownerAllowed(r, wallet) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	total, err := h.svc.TotalSize(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]int64{"totalSize": total})
}

// Download godoc
//
//	@Summary		Download a file by id
//	@Description	Streams the stored bytes as an attachment named after the original filename.
//	@Tags			files
//	@Produce		application/octet-stream
//	@Param			id	path		string	true	"file id"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/download/{id} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, body, err := h.svc.Download(r.Context(), id)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	defer body.Close()

	if !ownerAllowed(r, rec.WalletAddress) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Filename+`"`)
	if rec.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; nothing left to do but log via the middleware status.
		return
	}
}

// Delete godoc
//
//	@Summary		Delete one file
//	@Description	Removes the object and its record, scoped by (walletAddress, filename).
//	@Tags			files
//	@Produce		json
//	@Param			filename		path		string	true	"filename"
//	@Param			walletAddress	query		string	true	"owning wallet address"
//	@Success		200				{object}	response.Envelope
//	@Failure		400				{object}	response.Envelope
//	@Failure		404				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/delete/{filename} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	wallet := r.URL.Query().Get("walletAddress")
	if wallet == "" {
		response.BadRequest(w, "walletAddress is required")
		return
	}
	if !ownerAllowed(r, wallet) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	if err := h.svc.Delete(r.Context(), wallet, filename); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.Message(w, "File deleted successfully.")
}

type deleteMultipleRequest struct {
	FileIDs []string `json:"fileIds"`
}

// DeleteMultiple godoc
//
//	@Summary		Delete many files by id
//	@Description	Deletes each id's object and record concurrently. Unknown ids are skipped; the first failure fails the call.
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		deleteMultipleRequest	true	"file ids"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/delete-multiple [post]
func (h *Handler) DeleteMultiple(w http.ResponseWriter, r *http.Request) {
	var req deleteMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if len(req.FileIDs) == 0 {
		response.BadRequest(w, "No file IDs provided.")
		return
	}

	if err := h.svc.DeleteMany(r.Context(), req.FileIDs, middleware.VerifiedWallet(r.Context())); err != nil {
		response.InternalError(w)
		return
	}
	response.Message(w, "Files deleted successfully.")
}

// List godoc
//
//	@Summary		List a wallet's files
//	@Description	Returns all file and folder records owned by the wallet, unordered.
//	@Tags			files
//	@Produce		json
//	@Param			walletAddress	query		string	true	"owning wallet address"
//	@Success		200				{array}		File
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("walletAddress")
	if wallet == "" {
		response.BadRequest(w, "walletAddress is required")
		return
	}
	if !ownerAllowed(r, wallet) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	files, err := h.svc.ListByWallet(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, files)
}

// Get godoc
//
//	@Summary		Get one file record
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"file id"
//	@Success		200	{object}	File
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	if !ownerAllowed(r, rec.WalletAddress) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}
	response.OK(w, rec)
}

// CreateFolder godoc
//
//	@Summary		Create a folder placeholder
//	@Description	Writes a zero-byte marker object and records a folder entry for it.
//	@Tags			folders
//	@Accept			mpfd
//	@Produce		json
//	@Param			folderName		formData	string	true	"folder name"
//	@Param			walletAddress	formData	string	true	"owning wallet address"
//	@Success		200				{object}	storeAndRecord
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/create-folder [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	folderName := r.FormValue("folderName")
	wallet := r.FormValue("walletAddress")
	if folderName == "" || wallet == "" {
		response.BadRequest(w, "folderName and walletAddress are required")
		return
	}
	if !ownerAllowed(r, wallet) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	res, rec, err := h.svc.CreateFolder(r.Context(), wallet, folderName)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, storeAndRecord{S3Data: res, DBData: rec})
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the bytes under uploads/<walletAddress>/<filename> and records metadata.
//	@Tags			files
//	@Accept			mpfd
//	@Produce		json
//	@Param			file			formData	file	true	"file to store"
//	@Param			walletAddress	formData	string	true	"owning wallet address"
//	@Success		200				{object}	storeAndRecord
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file uploaded.")
		return
	}
	defer src.Close()

	wallet := r.FormValue("walletAddress")
	if wallet == "" {
		response.BadRequest(w, "walletAddress is required")
		return
	}
	if !ownerAllowed(r, wallet) {
		response.Forbidden(w, "wallet not owned by caller")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	res, rec, err := h.svc.Upload(r.Context(), wallet, header.Filename, contentType, header.Size, src)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, storeAndRecord{S3Data: res, DBData: rec})
}

// ownerAllowed reports whether the caller may act on wallet. Always true when
// wallet verification is disabled (no verified wallet in the context).
func ownerAllowed(r *http.Request, wallet string) bool {
	verified := middleware.VerifiedWallet(r.Context())
	return verified == "" || verified == wallet
}
