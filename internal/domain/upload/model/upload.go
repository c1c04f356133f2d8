package model

import baseModel "poster_shop/pkg/model"

// Upload 上传的图片记录，创建后不可变
type Upload struct {
	baseModel.BaseModel
	Filename     string `gorm:"not null" json:"filename"` // 存储文件名
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
	URL          string `json:"url"`
}
