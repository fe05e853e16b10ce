package prj

import "errors"

var (
	// ErrSizeOverflow indicates a size, count or fixed-point value does not fit
	// its field.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrInvalidFormat indicates the file signature does not match.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidBlockFormat indicates an unexpected block tag.
	ErrInvalidBlockFormat = errors.New("invalid block format")
	// ErrInvalid indicates a structural mismatch inside a block.
	ErrInvalid = errors.New("invalid")
	// ErrInvalidHeightOffsetsIndex indicates a terrain block offset that is not
	// a multiple of 64 or points outside the offset table pool.
	ErrInvalidHeightOffsetsIndex = errors.New("invalid height offsets index")
	// ErrInvalidHeightOffsetsSize indicates a height offsets size mismatch.
	ErrInvalidHeightOffsetsSize = errors.New("invalid height offsets size")
	// ErrInvalidTrackControlPointFlags indicates unknown control point flags.
	ErrInvalidTrackControlPointFlags = errors.New("invalid track control point flags")
	// ErrInvalidString indicates a malformed C-string or one that is not
	// representable in Windows-1252.
	ErrInvalidString = errors.New("invalid string")
	// ErrStringTooLong indicates a string does not fit its fixed field.
	ErrStringTooLong = errors.New("string too long")
	// ErrHeightmapBlockCountMismatch indicates the heightmaps differ in block count.
	ErrHeightmapBlockCountMismatch = errors.New("heightmap block count mismatch")
	// ErrMarkerNotFound indicates the stream ended before the next block tag.
	ErrMarkerNotFound = errors.New("block marker not found")
	// ErrMarkerInPayload indicates a scanned payload contains its end marker.
	ErrMarkerInPayload = errors.New("block marker inside payload")
	// ErrInvalidHeightmap indicates a heightmap selector other than 1 or 2.
	ErrInvalidHeightmap = errors.New("invalid heightmap")
	// ErrEmptyTerrain indicates a terrain without heightmap blocks.
	ErrEmptyTerrain = errors.New("empty terrain")
	// ErrReadHeader indicates signature read failed.
	ErrReadHeader = errors.New("reading header failed")
	// ErrReadBlockHeader indicates block header read failed.
	ErrReadBlockHeader = errors.New("reading block header failed")
	// ErrReadBlock indicates block payload read failed.
	ErrReadBlock = errors.New("reading block failed")
	// ErrWriteProject indicates writing the encoded project failed.
	ErrWriteProject = errors.New("writing project failed")
	// ErrWriteImage indicates writing a heightmap image failed.
	ErrWriteImage = errors.New("writing image failed")
	// ErrEncodeTexture indicates BCn encoding of a heightmap failed.
	ErrEncodeTexture = errors.New("encode texture failed")
	// ErrOpenFile indicates project file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
)
