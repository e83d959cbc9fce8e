package transport

// Endpoint path constants for the wire protocol named in spec.md §6, all
// relative to an API gateway host and rooted at /v3/.
const (
	EndpointAuthInfo           = "/v3/auth/info"
	EndpointLogin              = "/v3/login"
	EndpointUserInfo           = "/v3/user/info"
	EndpointUserBaseFolder     = "/v3/user/baseFolder"
	EndpointDirContent         = "/v3/dir/content"
	EndpointDirPresent         = "/v3/dir/present"
	EndpointFilePresent        = "/v3/file/present"
	EndpointDirTree            = "/v3/dir/tree"
	EndpointDirCreate          = "/v3/dir/create"
	EndpointFileExists         = "/v3/file/exists"
	EndpointDirExists          = "/v3/dir/exists"
	EndpointDirShared          = "/v3/dir/shared"
	EndpointDirLinked          = "/v3/dir/linked"
	EndpointDirLinkAdd         = "/v3/dir/link/add"
	EndpointItemShare          = "/v3/item/share"
	EndpointItemShared         = "/v3/item/shared"
	EndpointItemLinked         = "/v3/item/linked"
	EndpointItemLinkedRename   = "/v3/item/linked/rename"
	EndpointItemSharedRename   = "/v3/item/shared/rename"
	EndpointDirDownload        = "/v3/dir/download"
	EndpointUpload             = "/v3/upload"
	EndpointUploadDone         = "/v3/upload/done"
	EndpointDirTrash           = "/v3/dir/trash"
	EndpointFileTrash          = "/v3/file/trash"
	EndpointFileMove           = "/v3/file/move"
	EndpointDirMove            = "/v3/dir/move"
	EndpointFileRename         = "/v3/file/rename"
	EndpointDirRename          = "/v3/dir/rename"
	EndpointFileLinkStatus     = "/v3/file/link/status"
	EndpointDirLinkStatus      = "/v3/dir/link/status"
	EndpointFileLinkEdit       = "/v3/file/link/edit"
	EndpointDirLinkRemove      = "/v3/dir/link/remove"
	EndpointFile               = "/v3/file"
)
